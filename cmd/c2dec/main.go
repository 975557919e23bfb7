package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/radiotools/codec2"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s 3200|2400|1600|1400|1300|1200|700C InputBitFile OutputRawFile\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "e.g. (headerless)    %s 1300 input.bin output.raw\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "e.g. (with header)   %s 1300 input.c2 output.raw\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Use - for stdin/stdout. A .c2 header overrides the mode argument.\n")
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

	var input []byte
	if inputFile == "-" {
		input, err = io.ReadAll(os.Stdin)
	} else {
		input, err = os.ReadFile(inputFile)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	// A c2 file header pins the mode of the stream.
	data := input
	if codec2.IsC2Header(input) {
		headerMode, err := codec2.HeaderMode(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: unsupported mode in header %X: %v\n", input[:codec2.HeaderSize], err)
			os.Exit(1)
		}
		mode = headerMode
		data = input[codec2.HeaderSize:]
	}

	codec, err := codec2.New(mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating codec: %v\n", err)
		os.Exit(1)
	}

	var fout *os.File
	if outputFile == "-" {
		fout = os.Stdout
	} else if fout, err = os.Create(outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer fout.Close()

	frameSize := codec.BytesPerFrame()
	raw := make([]byte, codec.SamplesPerFrame()*2)

	for i := 0; i+frameSize <= len(data); i += frameSize {
		pcm, err := codec.Decode(data[i : i+frameSize])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error decoding frame %d: %v\n", i/frameSize+1, err)
			os.Exit(1)
		}

		for j, s := range pcm {
			binary.LittleEndian.PutUint16(raw[j*2:], uint16(s))
		}
		if _, err = fout.Write(raw); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}

		if inputFile == "-" {
			fmt.Fprintf(os.Stderr, "Frame: %d\r", i/frameSize+1)
		}
	}
}
