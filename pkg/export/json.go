package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
)

// JSONFileName is the file written by WriteJSONFile.
const JSONFileName = "curriculum.json"

// WriteJSON writes repo as an indented curriculum document. Generated
// series are written as literal data, so loading the output reproduces the
// exact charts.
func WriteJSON(w io.Writer, repo *curriculum.Repository) error {
	doc := curriculum.DocumentFrom(repo)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal curriculum: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteJSONFile writes repo to dir/curriculum.json and returns the path.
func WriteJSONFile(dir string, repo *curriculum.Repository) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, JSONFileName)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteJSON(f, repo); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
