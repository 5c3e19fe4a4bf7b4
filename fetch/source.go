// Package fetch acquires the user-supplied inputs of the upload service: an
// uploaded file or a file downloaded from an http(s) URL, checked against a
// per-input extension allow-list and a download size cap.
//
// Every rejection is an *InputError whose message can be shown to the user
// as is.
package fetch

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// InputError is a validation failure of a user-supplied input.
type InputError struct {
	Msg string
	Err error // underlying cause, if any
}

func (e *InputError) Error() string { return e.Msg }

func (e *InputError) Unwrap() error { return e.Err }

func inputErrorf(format string, args ...any) *InputError {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err is, or wraps, an *InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// Source describes one input slot of the upload form.
type Source struct {
	Label    string   // shown in messages, e.g. "Excel workbook"
	Name     string   // file name the input is saved under, e.g. "workbook.xlsx"
	Exts     []string // allowed lower-case extensions with the dot
	Required bool
}

// Inputs of the proposal upload form.
var (
	Workbook    = Source{Label: "Excel workbook", Name: "workbook.xlsx", Exts: []string{".xlsx"}, Required: true}
	Template    = Source{Label: "Template PDF", Name: "template.pdf", Exts: []string{".pdf"}, Required: true}
	Mapping     = Source{Label: "Mapping JSON", Name: "mapping.json", Exts: []string{".json"}}
	Coordinates = Source{Label: "Coordinates JSON", Name: "coordinates.json", Exts: []string{".json"}}
)

func (s Source) allowed(ext string) bool {
	if len(s.Exts) == 0 {
		return true
	}
	ext = strings.ToLower(ext)
	for _, e := range s.Exts {
		if e == ext {
			return true
		}
	}
	return false
}

func (s Source) extList() string {
	exts := append([]string(nil), s.Exts...)
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

// UploadName returns the file name an upload called filename is saved as.
// The extension of the client's file name replaces that of s.Name; a client
// name without an extension keeps s.Name.
func (s Source) UploadName(filename string) (string, error) {
	// Clients may send full paths, with either separator.
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name := s.Name
	if ext := filepath.Ext(base); ext != "" && ext != base {
		name = strings.TrimSuffix(s.Name, filepath.Ext(s.Name)) + ext
	}
	if !s.allowed(filepath.Ext(name)) {
		return "", inputErrorf("%s must be one of: %s.", s.Label, s.extList())
	}
	return name, nil
}

// CheckURL validates a remote input URL: the scheme must be http or https
// and, when the path has an extension, it must be allowed.
func (s Source) CheckURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return inputErrorf("%s URL must start with http:// or https://.", s.Label)
	}
	if len(s.Exts) == 0 {
		return nil
	}
	clean := strings.ToLower(strings.SplitN(raw, "?", 2)[0])
	if ext := path.Ext(clean); ext != "" && !s.allowed(ext) {
		return inputErrorf("%s URL must end with: %s.", s.Label, s.extList())
	}
	return nil
}

// missing returns the error for a required input that was not supplied.
func (s Source) missing() *InputError {
	return inputErrorf("%s is required (upload a file or provide a URL).", s.Label)
}
