package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/lesingerouge/crawler/internal/entity"
	"github.com/lesingerouge/crawler/internal/usecase"
)

var ErrInvalidSeed = errors.New("invalid seed url")

// loadSeed merges positional seeds with the seeds file. Anything read from a
// file is a Many seed, even when it holds one URL.
func loadSeed(args []string, seedsFile string) (entity.Seed, error) {
	urls := append([]string(nil), args...)

	if seedsFile != "" {
		f, err := os.Open(seedsFile)
		if err != nil {
			return nil, fmt.Errorf("open seeds file: %w", err)
		}
		defer f.Close()

		listed, err := readSeeds(f)
		if err != nil {
			return nil, fmt.Errorf("read seeds file %s: %w", seedsFile, err)
		}
		urls = append(urls, listed...)
	}

	if len(urls) == 0 {
		return nil, usecase.ErrNoSeeds
	}
	for _, u := range urls {
		if err := validateSeed(u); err != nil {
			return nil, err
		}
	}
	return entity.NewSeed(urls, seedsFile != ""), nil
}

// readSeeds returns one URL per non-blank line; lines starting with # are
// comments.
func readSeeds(r io.Reader) ([]string, error) {
	var urls []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, sc.Err()
}

func validateSeed(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSeed, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w %q: scheme must be http or https", ErrInvalidSeed, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%w %q: missing host", ErrInvalidSeed, raw)
	}
	return nil
}
