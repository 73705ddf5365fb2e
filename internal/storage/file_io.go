// This file handles the import and export of user collections to and from files.

package storage

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"userdesk/local-app/internal/model"
)

// Supported export formats.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
	FormatYAML = "yaml"
	FormatCBOR = "cbor"
)

const zstdSuffix = ".zst"

// userList is the XML document wrapping an exported collection.
type userList struct {
	XMLName xml.Name     `xml:"users"`
	Users   []model.User `xml:"user"`
}

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	var err error
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("storage: CBOR encoder initialization failed: " + err.Error())
	}
	cborDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("storage: CBOR decoder initialization failed: " + err.Error())
	}
}

// FormatFromFilename derives the export format from the file extension,
// ignoring a trailing .zst. It falls back to json.
func FormatFromFilename(filename string) string {
	name := strings.TrimSuffix(strings.ToLower(filename), zstdSuffix)
	switch filepath.Ext(name) {
	case ".xml":
		return FormatXML
	case ".yaml", ".yml":
		return FormatYAML
	case ".cbor":
		return FormatCBOR
	default:
		return FormatJSON
	}
}

// FileExport writes users to filename in the given format. An empty format
// is derived from the file name. Names ending in .zst are zstd-compressed.
func FileExport(users []model.User, filename, format string) error {
	if format == "" {
		format = FormatFromFilename(filename)
	}
	if users == nil {
		users = []model.User{}
	}

	// Marshal the collection to the specified format
	var data []byte
	var err error
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(users, "", "  ")
	case FormatXML:
		data, err = xml.MarshalIndent(userList{Users: users}, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(users)
	case FormatCBOR:
		data, err = cborEncMode.Marshal(users)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}

	if strings.HasSuffix(strings.ToLower(filename), zstdSuffix) {
		encoder, err := zstd.NewWriter(nil)
		if err != nil {
			return fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		data = encoder.EncodeAll(data, nil)
		encoder.Close()
	}

	// Write the data to the file
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// FileImport reads a user collection from filename in the given format.
func FileImport(filename, format string) ([]model.User, error) {
	if format == "" {
		format = FormatFromFilename(filename)
	}

	// Read the file
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if strings.HasSuffix(strings.ToLower(filename), zstdSuffix) {
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		data, err = decoder.DecodeAll(data, nil)
		decoder.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decompress file: %w", err)
		}
	}

	// Unmarshal the data into a user collection
	var users []model.User
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &users)
	case FormatXML:
		var list userList
		err = xml.Unmarshal(data, &list)
		users = list.Users
	case FormatYAML:
		err = yaml.Unmarshal(data, &users)
	case FormatCBOR:
		err = cborDecMode.Unmarshal(data, &users)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal data: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}
