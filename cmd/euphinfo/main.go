// This tool prints the header, metadata, chunk inventory, and integrity
// report of an EUPH container.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ravr-audio/euph"
)

const missingPathMessage = "You must pass the path of the file to inspect"

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println(missingPathMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

var errMissingPath = errors.New("missing path argument")

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errMissingPath
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	res, err := euph.Decode(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Sample rate: %d Hz\n", res.Header.SampleRate)
	fmt.Fprintf(out, "Channels: %d\n", res.Header.ChannelCount)
	fmt.Fprintf(out, "Bit depth: %d\n", res.Header.BitDepth)
	fmt.Fprintf(out, "Duration: %dms\n", res.Header.DurationMs)
	fmt.Fprintf(out, "Profile: %s (level %d)\n", res.Header.Profile, res.Header.CompressionLevel)

	if m := res.Metadata; m != nil {
		fmt.Fprintf(out, "Title: %s\n", m.Title)
		fmt.Fprintf(out, "Artist: %s\n", m.Artist)
		fmt.Fprintf(out, "Album: %s\n", m.Album)
		fmt.Fprintf(out, "Genre: %s\n", m.Genre)
		fmt.Fprintf(out, "Year: %d\n", m.Year)
		fmt.Fprintf(out, "Track: %d\n", m.TrackNumber)

		if m.Enhancement != nil {
			fmt.Fprintf(out, "AI processed: %t\n", m.Enhancement.AIProcessed)
			fmt.Fprintf(out, "Genre detection: %s\n", m.Enhancement.GenreDetection)
		}
	}

	fmt.Fprintln(out, "Chunks:")

	for i, ch := range res.Chunks {
		fmt.Fprintf(out, "\t[%d] %s (%d bytes)\n", i, ch.Tag(), ch.Size)
	}

	fmt.Fprintf(out, "Integrity: verified=%t match=%t\n", res.Integrity.Verified, res.Integrity.ChecksumMatch)

	for _, tag := range res.Integrity.CorruptedChunks {
		fmt.Fprintf(out, "\tcorrupted chunk: %s\n", tag)
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}

	return nil
}
