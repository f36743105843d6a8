// This tool generates an EUPH container holding a sine tone or silence,
// useful for testing players and pipelines.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/ravr-audio/euph"
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("euphgen", flag.ContinueOnError)

	output := flagSet.String("output", "output"+euph.FileExtension, "filename to write to")
	frequency := flagSet.Float64("frequency", 440, "frequency in hertz to generate")
	length := flagSet.Float64("length", 5, "length in seconds of the output file")
	rate := flagSet.Int("rate", 48000, "sample rate in hertz")
	channels := flagSet.Int("channels", 1, "number of channels")
	profileName := flagSet.String("profile", "balanced", "compression profile: lossless, balanced, or compact")
	level := flagSet.Int("level", 6, "compression level 0-9")
	silence := flagSet.Bool("silence", false, "generate silence instead of a sine tone")
	title := flagSet.String("title", "", "title to store in the container metadata")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	profile, err := euph.ParseProfile(*profileName)
	if err != nil {
		return err
	}

	log.Printf("generating a %f sec %s file at %d hz", *length, profile, *rate)

	numFrames := int(float64(*rate) * *length)

	pcm := make([][]float32, *channels)
	for j := range pcm {
		pcm[j] = make([]float32, numFrames)

		if *silence {
			continue
		}

		for i := range numFrames {
			pcm[j][i] = float32(math.Sin(float64(i) / float64(*rate) * *frequency * 2 * math.Pi))
		}
	}

	enc := euph.NewEncoder(euph.EncodeOptions{
		Profile:          profile,
		CompressionLevel: *level,
		Checksum:         true,
	})

	data, err := enc.EncodeChannels(pcm, &euph.Metadata{
		Title:      *title,
		SampleRate: *rate,
	})
	if err != nil {
		return err
	}

	err = os.WriteFile(*output, data, 0o644)
	if err != nil {
		return fmt.Errorf("error writing %s: %w", *output, err)
	}

	return nil
}
