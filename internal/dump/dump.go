package dump

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/TimelordUK/hexdd/internal/fault"
	"github.com/TimelordUK/hexdd/internal/render"
	"github.com/TimelordUK/hexdd/internal/source"
)

// Extension is appended to the input path for the default output file
const Extension = ".hexdmp"

// windowBytes bounds how much of the file is materialized per read
const windowBytes = 64 * 1024

// Stats describes a completed or partial dump
type Stats struct {
	Rows  int64
	Bytes int64
}

// OutputPath returns the default dump target for input
func OutputPath(input string) string {
	return input + Extension
}

// Dump writes every row of src to w in file order. Reads are whole numbers
// of rows so the row boundaries match the interactive view. On failure the
// rows already written stay written and Stats reports how far it got.
func Dump(src source.ByteSource, cfg render.DisplayConfig, w io.Writer) (Stats, error) {
	var stats Stats
	if err := cfg.Validate(); err != nil {
		return stats, err
	}

	rowsPerWindow := windowBytes / cfg.RowWidth
	if rowsPerWindow < 1 {
		rowsPerWindow = 1
	}
	chunk := rowsPerWindow * cfg.RowWidth

	out := bufio.NewWriter(w)
	length := src.Length()

	for offset := int64(0); offset < length; {
		window, err := src.Read(offset, chunk)
		if err != nil {
			out.Flush()
			return stats, fmt.Errorf("dump %s at %d: %w", src.Path(), offset, err)
		}
		if window.Len() == 0 {
			break
		}
		// A short read before EOF must still end on a row boundary
		if window.End() < length && window.Len()%cfg.RowWidth != 0 {
			out.Flush()
			return stats, fmt.Errorf("dump %s: short read of %d bytes at %d: %w", src.Path(), window.Len(), offset, fault.ErrIOFault)
		}

		for _, row := range render.Render(window, cfg, src.Modified) {
			if _, err := out.WriteString(row.String()); err != nil {
				return stats, fmt.Errorf("write dump: %v: %w", err, fault.ErrIOFault)
			}
			if err := out.WriteByte('\n'); err != nil {
				return stats, fmt.Errorf("write dump: %v: %w", err, fault.ErrIOFault)
			}
			stats.Rows++
			stats.Bytes += int64(row.Len())
		}

		// Flush per window so a later fault leaves complete rows behind
		if err := out.Flush(); err != nil {
			return stats, fmt.Errorf("write dump: %v: %w", err, fault.ErrIOFault)
		}
		offset = window.End()
	}

	return stats, nil
}

// ToFile maps input read-only and dumps it to output. The input is opened
// before the output is created, so a missing input leaves nothing behind.
func ToFile(input, output string, cfg render.DisplayConfig) (Stats, error) {
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}

	src, err := source.NewMappedSource(input)
	if err != nil {
		return Stats{}, err
	}
	defer src.Close()

	outFile, err := os.Create(output)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to create dump file: %v: %w", err, fault.ErrIOFault)
	}

	stats, err := Dump(src, cfg, outFile)
	if closeErr := outFile.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close dump file: %v: %w", closeErr, fault.ErrIOFault)
	}
	if err != nil {
		log.Printf("dump %s: partial output, %d rows written to %s: %v", input, stats.Rows, output, err)
		return stats, err
	}

	log.Printf("dump %s: %d rows, %d bytes to %s", input, stats.Rows, stats.Bytes, output)
	return stats, nil
}
