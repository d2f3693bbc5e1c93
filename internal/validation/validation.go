// Package validation decides whether a file may enter the intake pipeline.
// Checks are synchronous and side-effect free; nothing here touches the
// network.
package validation

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
)

// File describes a candidate file as declared by whoever handed it over.
type File struct {
	Name      string
	MediaType string
	Size      int64
}

// Profile is an allow-list of media types and extensions. Extensions are
// stored lowercase without the leading dot. MaxBytes of zero disables the
// size check.
type Profile struct {
	Name       string
	MediaTypes map[string]struct{}
	Extensions map[string]struct{}
	MaxBytes   int64
}

// ValidationError reports why a file was rejected.
type ValidationError struct {
	File   string
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }

var wordTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ResumeProfile accepts PDF and Word documents.
var ResumeProfile = NewProfile("resume",
	wordTypes,
	[]string{"pdf", "doc", "docx"},
)

// DocumentProfile accepts identity documents: PDF, Word and PNG/JPEG images.
var DocumentProfile = NewProfile("identity_document",
	append(append([]string{}, wordTypes...), "image/png", "image/jpeg", "image/jpg"),
	[]string{"pdf", "doc", "docx", "png", "jpg", "jpeg"},
)

// NewProfile builds a Profile from plain lists.
func NewProfile(name string, mediaTypes, extensions []string) Profile {
	p := Profile{
		Name:       name,
		MediaTypes: make(map[string]struct{}, len(mediaTypes)),
		Extensions: make(map[string]struct{}, len(extensions)),
	}
	for _, mt := range mediaTypes {
		p.MediaTypes[strings.ToLower(mt)] = struct{}{}
	}
	for _, ext := range extensions {
		p.Extensions[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return p
}

// WithMaxBytes returns a copy of p that rejects files larger than n bytes.
func (p Profile) WithMaxBytes(n int64) Profile {
	p.MaxBytes = n
	return p
}

// Validate accepts f when its declared media type OR its extension is allowed
// by p. A generic or missing declared type therefore does not reject a file
// whose name is otherwise fine. The returned error is a *ValidationError.
func Validate(f File, p Profile) error {
	if strings.TrimSpace(f.Name) == "" {
		return &ValidationError{File: f.Name, Reason: ErrInvalidFileType}
	}
	if !p.allowsMediaType(f.MediaType) && !p.allowsExtension(f.Name) {
		return &ValidationError{File: f.Name, Reason: ErrInvalidFileType}
	}
	if p.MaxBytes > 0 && f.Size > p.MaxBytes {
		return &ValidationError{File: f.Name, Reason: ErrFileTooLarge}
	}
	return nil
}

func (p Profile) allowsMediaType(declared string) bool {
	if declared == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(declared))
	}
	_, ok := p.MediaTypes[mt]
	return ok
}

func (p Profile) allowsExtension(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		return false
	}
	_, ok := p.Extensions[ext]
	return ok
}
