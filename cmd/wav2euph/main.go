// This tool converts a WAV file into an EUPH container. Encode settings and
// metadata can be supplied through a YAML config file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cwbudde/wav"
	"github.com/ravr-audio/euph"
	"gopkg.in/yaml.v3"
)

type encodeConfig struct {
	Profile           string `yaml:"profile"`
	CompressionLevel  int    `yaml:"compressionLevel"`
	MaxAudioChunkSize int    `yaml:"maxAudioChunkSize"`
	Checksum          *bool  `yaml:"checksum"`
	Metadata          struct {
		Title       string `yaml:"title"`
		Artist      string `yaml:"artist"`
		Album       string `yaml:"album"`
		Genre       string `yaml:"genre"`
		Year        int    `yaml:"year"`
		TrackNumber int    `yaml:"trackNumber"`
	} `yaml:"metadata"`
}

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("wav2euph", flag.ContinueOnError)

	input := flagSet.String("input", "", "path of the WAV file to convert")
	output := flagSet.String("output", "", "path of the EUPH file to write (defaults next to the input)")
	configPath := flagSet.String("config", "", "optional YAML encode config")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	if *input == "" {
		return fmt.Errorf("the -input flag is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	file, err := os.Open(*input)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", *input, err)
	}
	defer file.Close()

	dec := wav.NewDecoder(file)

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("failed to read PCM from %s: %w", *input, err)
	}

	opts, meta, err := cfg.apply()
	if err != nil {
		return err
	}

	meta.BitDepth = int(dec.BitDepth)

	data, err := euph.NewEncoder(opts).Encode(buf, meta)
	if err != nil {
		return err
	}

	outPath := *output
	if outPath == "" {
		outPath = (*input)[:len(*input)-len(filepath.Ext(*input))] + euph.FileExtension
	}

	err = os.WriteFile(outPath, data, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	log.Printf("wrote %s (%d bytes)", outPath, len(data))

	return nil
}

func loadConfig(path string) (*encodeConfig, error) {
	cfg := &encodeConfig{
		Profile:          "balanced",
		CompressionLevel: 6,
	}

	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *encodeConfig) apply() (euph.EncodeOptions, *euph.Metadata, error) {
	profile, err := euph.ParseProfile(c.Profile)
	if err != nil {
		return euph.EncodeOptions{}, nil, err
	}

	opts := euph.EncodeOptions{
		Profile:           profile,
		CompressionLevel:  c.CompressionLevel,
		MaxAudioChunkSize: c.MaxAudioChunkSize,
		Checksum:          true,
	}
	if c.Checksum != nil {
		opts.Checksum = *c.Checksum
	}

	meta := &euph.Metadata{
		Title:       c.Metadata.Title,
		Artist:      c.Metadata.Artist,
		Album:       c.Metadata.Album,
		Genre:       c.Metadata.Genre,
		Year:        c.Metadata.Year,
		TrackNumber: c.Metadata.TrackNumber,
	}

	return opts, meta, nil
}
