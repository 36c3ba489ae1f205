package recognition

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/trungnq/frontdesk/internal/customer"
	"github.com/trungnq/frontdesk/internal/faceapi"
	"github.com/trungnq/frontdesk/internal/fault"
	"github.com/trungnq/frontdesk/internal/idcard"
	"github.com/trungnq/frontdesk/internal/imaging"
	"github.com/trungnq/frontdesk/internal/ocrapi"
	"github.com/trungnq/frontdesk/internal/vectors"
)

// FaceEngine detects faces and produces embeddings for an image.
type FaceEngine interface {
	Extract(ctx context.Context, imageData []byte) ([]faceapi.Detection, error)
}

// OCREngine reads text fragments from an image in reading order.
type OCREngine interface {
	ReadText(ctx context.Context, imageData []byte) ([]ocrapi.Reading, error)
}

// Announcer speaks a greeting for a returning customer.
type Announcer interface {
	Greet(ctx context.Context, name string) error
}

// DefaultMinProbeImages is the minimum number of probe images a recognition
// request must carry.
const DefaultMinProbeImages = 3

const defaultShortlistSize = 10

const greetTimeout = 15 * time.Second

// maxProbeImageSize bounds the longer edge of probe images before they are
// sent to the face engine.
const maxProbeImageSize = 1280

// RecognizeResult is the outcome of a recognition request. Matched reports
// whether an existing customer was identified; Created reports whether a new
// record was inserted instead.
type RecognizeResult struct {
	Matched    bool             `json:"matched"`
	Created    bool             `json:"created"`
	Customer   *customer.Record `json:"customer,omitempty"`
	Confidence float64          `json:"confidence,omitempty"`
}

// Service orchestrates face recognition and ID card extraction over the
// customer store and the external engines.
type Service struct {
	store     customer.Store
	faces     FaceEngine
	ocr       OCREngine
	announcer Announcer
	extractor *idcard.Extractor
	matcher   *Matcher
	index     *Index

	minImages  int
	shortlistK int
}

// Option configures a Service.
type Option func(*Service)

// WithAnnouncer enables fire and forget greetings on successful matches.
func WithAnnouncer(a Announcer) Option {
	return func(s *Service) { s.announcer = a }
}

// WithIndex enables HNSW candidate shortlisting instead of full store scans.
func WithIndex(idx *Index) Option {
	return func(s *Service) { s.index = idx }
}

// WithShortlistSize overrides how many candidates the index returns.
func WithShortlistSize(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.shortlistK = k
		}
	}
}

// WithMinProbeImages overrides the minimum probe image count.
func WithMinProbeImages(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minImages = n
		}
	}
}

// NewService creates a recognition service over the given store and engines.
func NewService(store customer.Store, faces FaceEngine, ocr OCREngine, opts ...Option) *Service {
	s := &Service{
		store:      store,
		faces:      faces,
		ocr:        ocr,
		extractor:  idcard.NewExtractor(),
		matcher:    NewMatcher(),
		minImages:  DefaultMinProbeImages,
		shortlistK: defaultShortlistSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RebuildIndex reloads the shortlist index from the store. No-op when
// shortlisting is disabled.
func (s *Service) RebuildIndex(ctx context.Context) error {
	if s.index == nil {
		return nil
	}
	records, err := s.store.FindAll(ctx)
	if err != nil {
		return err
	}
	s.index.Rebuild(records)
	return nil
}

// Recognize identifies the customer on the probe images, or registers a new
// one when nobody in the store is similar enough. imageRefs carries the
// stored locations of the probe images and is persisted alongside the
// embeddings; it may be shorter than images.
func (s *Service) Recognize(ctx context.Context, images [][]byte, imageRefs []string) (*RecognizeResult, error) {
	if len(images) < s.minImages {
		return nil, fault.Validation("at least %d images required, got %d", s.minImages, len(images))
	}

	embeddings, err := s.probeEmbeddings(ctx, images)
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fault.Validation("no face detected in any of the %d images", len(images))
	}

	probe, _ := vectors.Mean(embeddings)

	candidates, err := s.candidates(ctx, probe)
	if err != nil {
		return nil, err
	}

	match, ok := s.matcher.FindMatch(probe, candidates)
	if !ok {
		return s.register(ctx, embeddings, imageRefs)
	}

	if err := s.store.AppendEmbeddings(ctx, match.Customer.ID, embeddings); err != nil {
		return nil, err
	}
	if len(imageRefs) > 0 {
		if err := s.store.AppendFaceImages(ctx, match.Customer.ID, imageRefs); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.Get(ctx, match.Customer.ID)
	if err != nil {
		return nil, err
	}
	if s.index != nil {
		s.index.Upsert(*updated)
	}

	s.greet(updated.FullName)

	return &RecognizeResult{
		Matched:    true,
		Customer:   updated,
		Confidence: match.Confidence,
	}, nil
}

// probeEmbeddings extracts one embedding per image, taking the largest
// detected face. Images without a face are skipped.
func (s *Service) probeEmbeddings(ctx context.Context, images [][]byte) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(images))
	for _, img := range images {
		data, err := imaging.Downsize(img, maxProbeImageSize)
		if err != nil {
			return nil, err
		}

		detections, err := s.faces.Extract(ctx, data)
		if err != nil {
			return nil, err
		}

		face, ok := faceapi.LargestFace(detections)
		if !ok {
			continue
		}
		embeddings = append(embeddings, face.Embedding)
	}
	return embeddings, nil
}

func (s *Service) candidates(ctx context.Context, probe []float32) ([]customer.Record, error) {
	if s.index == nil || s.index.Count() == 0 {
		return s.store.FindAll(ctx)
	}

	ids := s.index.Shortlist(probe, s.shortlistK)
	records := make([]customer.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.store.Get(ctx, id)
		if err != nil {
			// The index may be momentarily ahead of or behind the store.
			if errors.Is(err, fault.ErrNotFound) {
				continue
			}
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

func (s *Service) register(ctx context.Context, embeddings [][]float32, imageRefs []string) (*RecognizeResult, error) {
	rec := &customer.Record{
		Embeddings: customer.MergeEmbeddings(nil, embeddings, customer.KeepOldest),
		FaceImages: imageRefs,
	}

	id, err := s.store.Insert(ctx, rec)
	if err != nil {
		return nil, err
	}

	created, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.index != nil {
		s.index.Upsert(*created)
	}

	return &RecognizeResult{Created: true, Customer: created}, nil
}

// greet dispatches a TTS greeting without blocking the response path.
// Failures are logged and dropped.
func (s *Service) greet(name string) {
	if s.announcer == nil || name == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), greetTimeout)
		defer cancel()
		if err := s.announcer.Greet(ctx, name); err != nil {
			log.Printf("greeting %q failed: %v", name, err)
		}
	}()
}

// ExtractIDCard runs OCR over an ID card photo and extracts identity fields
// from the recognized text.
func (s *Service) ExtractIDCard(ctx context.Context, image []byte) (idcard.ExtractedIdentity, error) {
	if _, err := imaging.Decode(image); err != nil {
		return idcard.ExtractedIdentity{}, err
	}

	readings, err := s.ocr.ReadText(ctx, image)
	if err != nil {
		return idcard.ExtractedIdentity{}, err
	}

	tokens := make([]idcard.Token, len(readings))
	for i, r := range readings {
		tokens[i] = idcard.Token{Text: r.Text, Confidence: r.Confidence}
	}
	return s.extractor.Extract(tokens), nil
}

// SaveIdentity persists extracted identity fields. When the update carries a
// national id number already present in the store, the existing record is
// updated instead of creating a duplicate. Returns the customer id.
func (s *Service) SaveIdentity(ctx context.Context, fields customer.FieldUpdate) (string, error) {
	if fields.IsEmpty() {
		return "", fault.Validation("no identity fields to save")
	}

	if fields.IDNumber != nil && *fields.IDNumber != "" {
		existing, err := s.store.FindByIDNumber(ctx, *fields.IDNumber)
		if err != nil {
			return "", err
		}
		if existing != nil {
			if err := s.store.UpdateFields(ctx, existing.ID, fields); err != nil {
				return "", err
			}
			return existing.ID, nil
		}
	}

	rec := &customer.Record{}
	fields.Apply(rec)
	return s.store.Insert(ctx, rec)
}

// UpdateCustomer applies a partial identity update to an existing record.
func (s *Service) UpdateCustomer(ctx context.Context, id string, fields customer.FieldUpdate) error {
	if fields.IsEmpty() {
		return fault.Validation("no fields to update")
	}
	return s.store.UpdateFields(ctx, id, fields)
}
