// Package media writes submission attachments next to the relational store.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"anoa.com/plantspeak/pkg/apperror"
	"anoa.com/plantspeak/pkg/storage"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

type Kind string

const (
	KindPhoto Kind = "photo"
	KindVoice Kind = "voice"
	KindNotes Kind = "notes"
)

var Kinds = []Kind{KindPhoto, KindVoice, KindNotes}

func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Dir is the storage directory for the kind.
func (k Kind) Dir() string {
	switch k {
	case KindPhoto:
		return "photos"
	case KindVoice:
		return "voice"
	default:
		return "notes"
	}
}

var allowedTypes = map[Kind][]string{
	KindPhoto: {"image/jpeg", "image/png"},
	KindVoice: {"audio/mpeg", "audio/wav", "audio/x-m4a", "audio/mp4", "video/mp4", "audio/aac", "audio/ogg", "application/ogg"},
	KindNotes: {"image/jpeg", "image/png", "application/pdf"},
}

// sniffLen matches mimetype's default read limit.
const sniffLen = 3072

var ErrTooLarge = errors.New("attachment exceeds size limit")

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

type Upload struct {
	Kind     Kind
	FileName string
	Size     int64
	Content  io.Reader
}

// Paths holds the stored reference of each attachment; empty means absent.
type Paths struct {
	Photo string
	Voice string
	Notes string
}

func (p Paths) Get(k Kind) string {
	switch k {
	case KindPhoto:
		return p.Photo
	case KindVoice:
		return p.Voice
	case KindNotes:
		return p.Notes
	}
	return ""
}

func (p *Paths) set(k Kind, ref string) {
	switch k {
	case KindPhoto:
		p.Photo = ref
	case KindVoice:
		p.Voice = ref
	case KindNotes:
		p.Notes = ref
	}
}

func (p Paths) All() []string {
	var refs []string
	for _, k := range Kinds {
		if ref := p.Get(k); ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

type Sidecar struct {
	store    storage.FileStorage
	maxBytes int64
	logger   *zap.Logger
}

func NewSidecar(store storage.FileStorage, maxBytes int64, logger *zap.Logger) *Sidecar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sidecar{store: store, maxBytes: maxBytes, logger: logger}
}

type prepared struct {
	upload      Upload
	key         string
	contentType string
	body        io.Reader
}

// Store writes every upload for submission id. Either all attachments are
// written or none remain: on failure the ones already written are removed.
// Rejected content is an input error; a failed write is ErrAttachment.
func (s *Sidecar) Store(ctx context.Context, id string, uploads []Upload) (Paths, error) {
	var paths Paths
	if len(uploads) == 0 {
		return paths, nil
	}

	seen := make(map[Kind]bool, len(uploads))
	items := make([]prepared, 0, len(uploads))
	for _, u := range uploads {
		if seen[u.Kind] {
			return paths, fmt.Errorf("%w: more than one %s attachment", apperror.ErrInvalidInput, u.Kind)
		}
		seen[u.Kind] = true

		p, err := s.prepare(id, u)
		if err != nil {
			return paths, err
		}
		items = append(items, p)
	}

	for _, item := range items {
		ref, err := s.store.Put(ctx, item.key, item.body, item.contentType)
		if err != nil {
			s.Discard(ctx, paths)
			if errors.Is(err, ErrTooLarge) {
				return Paths{}, fmt.Errorf("%w: %s: %v", apperror.ErrInvalidInput, item.upload.Kind, err)
			}
			return Paths{}, fmt.Errorf("%w: %s: %v", apperror.ErrAttachment, item.upload.Kind, err)
		}
		paths.set(item.upload.Kind, ref)
	}

	return paths, nil
}

func (s *Sidecar) prepare(id string, u Upload) (prepared, error) {
	if _, ok := ParseKind(string(u.Kind)); !ok {
		return prepared{}, fmt.Errorf("%w: unknown attachment kind %q", apperror.ErrInvalidInput, u.Kind)
	}
	if s.maxBytes > 0 && u.Size > s.maxBytes {
		return prepared{}, fmt.Errorf("%w: %s: %v", apperror.ErrInvalidInput, u.Kind, ErrTooLarge)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(u.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return prepared{}, fmt.Errorf("%w: read %s: %v", apperror.ErrAttachment, u.Kind, err)
	}
	if n == 0 {
		return prepared{}, fmt.Errorf("%w: %s attachment is empty", apperror.ErrInvalidInput, u.Kind)
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	if !isAllowed(u.Kind, mt) {
		return prepared{}, fmt.Errorf("%w: %s attachment has unsupported type %s", apperror.ErrInvalidInput, u.Kind, mt.String())
	}

	body := io.MultiReader(bytes.NewReader(head), u.Content)
	if s.maxBytes > 0 {
		body = &limitReader{r: body, remaining: s.maxBytes}
	}

	return prepared{
		upload:      u,
		key:         u.Kind.Dir() + "/" + id + extension(u.FileName, mt),
		contentType: mt.String(),
		body:        body,
	}, nil
}

// Discard removes written attachments. Failures are logged only.
func (s *Sidecar) Discard(ctx context.Context, paths Paths) {
	for _, ref := range paths.All() {
		if err := s.store.Delete(ctx, ref); err != nil {
			s.logger.Warn("failed to remove attachment", zap.String("ref", ref), zap.Error(err))
		}
	}
}

func (s *Sidecar) Locate(ctx context.Context, ref string) (storage.Location, error) {
	loc, err := s.store.Locate(ctx, ref)
	if err != nil {
		return storage.Location{}, fmt.Errorf("%w: attachment: %v", apperror.ErrNotFound, err)
	}
	return loc, nil
}

func isAllowed(k Kind, mt *mimetype.MIME) bool {
	for _, allowed := range allowedTypes[k] {
		if mt.Is(allowed) {
			return true
		}
	}
	return false
}

// extension keeps the client's extension lower-cased. One that does not look
// like an extension is replaced by the detected type's.
func extension(fileName string, mt *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || extPattern.MatchString(ext) {
		return ext
	}
	return mt.Extension()
}

type limitReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrTooLarge
	}
	return n, err
}
