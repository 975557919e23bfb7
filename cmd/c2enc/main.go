package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/radiotools/codec2"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s 3200|2400|1600|1400|1300|1200|700C InputRawSpeechFile OutputBitFile\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "e.g. (headerless)    %s 1300 input.raw output.bin\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "e.g. (with header)   %s 1300 input.raw output.c2\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Use - for stdin/stdout. Input is 8kHz mono 16-bit little-endian PCM.\n")
	os.Exit(1)
}

func main() {
	if len(os.Args) != 4 {
		usage()
	}

	mode, err := codec2.ParseMode(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", os.Args[1])
		usage()
	}
	inputFile := os.Args[2]
	outputFile := os.Args[3]

	codec, err := codec2.New(mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating codec: %v\n", err)
		os.Exit(1)
	}

	var fin *os.File
	if inputFile == "-" {
		fin = os.Stdin
	} else if fin, err = os.Open(inputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening input speech file: %s: %s\n", inputFile, err.Error())
		os.Exit(1)
	}
	defer fin.Close()

	var fout *os.File
	if outputFile == "-" {
		fout = os.Stdout
	} else if fout, err = os.Create(outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening output compressed bit file: %s: %s\n", outputFile, err.Error())
		os.Exit(1)
	}
	defer fout.Close()

	// Add a c2 header if the output file has a .c2 extension.
	if strings.ToLower(filepath.Ext(outputFile)) == ".c2" {
		header := codec2.NewHeader(mode)
		if err := binary.Write(fout, binary.LittleEndian, header); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing header: %v\n", err)
			os.Exit(1)
		}
	}

	frame := make([]byte, codec.SamplesPerFrame()*2)
	pcm := make([]int16, codec.SamplesPerFrame())
	frameCount := 0

	for {
		frameCount++
		// Read a frame of raw PCM samples. Partial trailing frames are
		// discarded.
		_, err := io.ReadFull(fin, frame)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			os.Exit(1)
		}

		for j := range pcm {
			pcm[j] = int16(binary.LittleEndian.Uint16(frame[j*2:]))
		}

		encodedFrame, err := codec.Encode(pcm)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding frame: %v\n", err)
			os.Exit(1)
		}
		if _, err = fout.Write(encodedFrame); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}

		if fin == os.Stdin {
			fmt.Fprintf(os.Stderr, "Frame: %d\r", frameCount)
		}
		if fout == os.Stdout {
			fout.Sync()
		}
	}
}
