package clix

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"admatch/internal/models"
	"admatch/internal/util"
)

// Inventory is the file format read by `admatch inventory import`.
type Inventory struct {
	Ads     []*models.Ad          `json:"ads"`
	Content []*models.ContentItem `json:"content"`
}

// ReadInput returns the contents of path, or of stdin when path is "-".
func ReadInput(path string, stdin io.Reader) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if util.LooksBinary(data) {
		return nil, fmt.Errorf("%s does not look like a text file", path)
	}
	return data, nil
}

// ReadAds decodes a JSON array of ads from path ("-" for stdin). A JSON
// null entry is kept as a nil ad so ranking can report it as skipped.
func ReadAds(path string, stdin io.Reader) ([]*models.Ad, error) {
	data, err := ReadInput(path, stdin)
	if err != nil {
		return nil, err
	}
	var ads []*models.Ad
	if err := json.Unmarshal(data, &ads); err != nil {
		return nil, fmt.Errorf("decode ads from %s: %w", path, err)
	}
	return ads, nil
}

// ReadInventory decodes an inventory document from path ("-" for stdin).
func ReadInventory(path string, stdin io.Reader) (*Inventory, error) {
	data, err := ReadInput(path, stdin)
	if err != nil {
		return nil, err
	}
	inv := &Inventory{}
	if err := json.Unmarshal(data, inv); err != nil {
		return nil, fmt.Errorf("decode inventory from %s: %w", path, err)
	}
	if len(inv.Ads) == 0 && len(inv.Content) == 0 {
		return nil, errors.New("inventory document has no ads and no content")
	}
	return inv, nil
}
