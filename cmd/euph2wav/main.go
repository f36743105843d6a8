// This tool converts an EUPH container into a 16-bit PCM WAV file for
// playback interop.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cwbudde/wav"
	"github.com/ravr-audio/euph"
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("euph2wav", flag.ContinueOnError)

	input := flagSet.String("input", "", "path of the EUPH file to convert")
	output := flagSet.String("output", "", "path of the WAV file to write (defaults next to the input)")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if *input == "" {
		return fmt.Errorf("the -input flag is required")
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		return err
	}

	res, err := euph.Decode(data)
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		log.Printf("warning: %s", w)
	}

	buf := res.Buffer()
	if buf == nil {
		return fmt.Errorf("no audio recovered from %s", *input)
	}

	outPath := *output
	if outPath == "" {
		outPath = (*input)[:len(*input)-len(filepath.Ext(*input))] + ".wav"
	}

	outFile, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer outFile.Close()

	enc := wav.NewEncoder(outFile, buf.Format.SampleRate, 16, buf.Format.NumChannels, 1)

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write PCM: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", outPath, err)
	}

	log.Printf("wrote %s", outPath)

	return nil
}
