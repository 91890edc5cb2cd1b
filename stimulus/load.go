package stimulus

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Format tells how a stimulus file encodes its values.
type Format int

// Stimulus file formats.
const (
	// FormatDecimal files hold whitespace-separated decimal values in
	// [0, 255]. A '#' starts a comment that runs to the end of the line.
	FormatDecimal Format = iota

	// FormatChars files use every non-whitespace character as one value.
	FormatChars
)

// ParseFormat converts "decimal" or "chars" to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "decimal":
		return FormatDecimal, nil
	case "chars":
		return FormatChars, nil
	default:
		return 0, errors.Errorf("unknown stimulus format %q", s)
	}
}

// Load reads the values of a stimulus.
func Load(r io.Reader, format Format) ([]byte, error) {
	switch format {
	case FormatDecimal:
		return loadDecimal(r)
	case FormatChars:
		return loadChars(r)
	default:
		return nil, errors.Errorf("unknown stimulus format %d", format)
	}
}

// LoadFile reads the values of a stimulus file.
func LoadFile(path string, format Format) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open stimulus")
	}
	defer f.Close()

	values, err := Load(f, format)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}

	return values, nil
}

func loadDecimal(r io.Reader) ([]byte, error) {
	var values []byte

	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++

		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}

		for _, field := range strings.Fields(text) {
			v, err := strconv.ParseUint(field, 10, 8)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}

			values = append(values, byte(v))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read stimulus")
	}

	return values, nil
}

func loadChars(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read stimulus")
	}

	values := make([]byte, 0, len(data))
	for _, c := range data {
		switch c {
		case ' ', '\t', '\n', '\r', '\v', '\f':
			continue
		}

		values = append(values, c)
	}

	return values, nil
}
