package dataops

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/marmos91/datavault/internal/telemetry"
	dverr "github.com/marmos91/datavault/pkg/dataops/errors"
	"github.com/marmos91/datavault/pkg/grid"
)

// ============================================================================
// Metadata Engine
// ============================================================================

const (
	// reservedUnit marks "no unit supplied" on stored triples. The backing
	// store treats an empty unit specially in some operations, so the
	// sentinel is stored instead and translated back to "" on read.
	reservedUnit = "datavault::no-unit"

	// encodedUnit marks a triple whose value has been base64-encoded by the
	// delete workaround.
	encodedUnit = "datavault::base64-value"

	// treeURLAttr is the fixed attribute under which tree URLs are stored
	// as one serialized JSON list.
	treeURLAttr = "datavault::tree-urls"
)

// Metadata returns every AVU triple attached to path. The reserved no-unit
// sentinel is translated back to an empty unit.
func (s *Service) Metadata(ctx context.Context, user, path string) ([]grid.AVU, error) {
	ctx, span, start := s.begin(ctx, "metadata-get", user, telemetry.Path(path))
	defer span.End()

	avus, err := s.metadata(ctx, user, path)
	s.observe(ctx, "metadata-get", start, err)
	return avus, err
}

func (s *Service) metadata(ctx context.Context, user, path string) ([]grid.AVU, error) {
	err := runChecks(
		func() error { return s.checkUserExists(ctx, user) },
		func() error { return s.checkPathExists(ctx, path) },
		func() error { return s.checkReadable(ctx, user, path) },
	)
	if err != nil {
		return nil, err
	}

	avus, err := s.store.Metadata(ctx, path)
	if err != nil {
		return nil, err
	}

	for i := range avus {
		if avus[i].Unit == reservedUnit {
			avus[i].Unit = ""
		}
	}
	return avus, nil
}

// AddMetadata attaches one triple to path. An empty unit is stored as the
// reserved sentinel.
func (s *Service) AddMetadata(ctx context.Context, user, path string, avu grid.AVU) error {
	ctx, span, start := s.begin(ctx, "metadata-add", user,
		telemetry.Path(path), telemetry.MetadataAttribute(avu.Attribute))
	defer span.End()

	err := s.addMetadata(ctx, user, path, avu)
	s.observe(ctx, "metadata-add", start, err)
	return err
}

func (s *Service) addMetadata(ctx context.Context, user, path string, avu grid.AVU) error {
	if err := validateAVU(avu); err != nil {
		return err
	}

	err := runChecks(
		func() error { return s.checkUserExists(ctx, user) },
		func() error { return s.checkPathExists(ctx, path) },
		func() error { return s.checkWritable(ctx, user, path) },
	)
	if err != nil {
		return err
	}

	return s.store.AddMetadata(ctx, path, withUnitSentinel(avu))
}

// DeleteMetadata removes one triple from path. Deleting a triple that is not
// attached is a no-op.
func (s *Service) DeleteMetadata(ctx context.Context, user, path string, avu grid.AVU) error {
	ctx, span, start := s.begin(ctx, "metadata-delete", user,
		telemetry.Path(path), telemetry.MetadataAttribute(avu.Attribute))
	defer span.End()

	err := s.deleteMetadata(ctx, user, path, avu)
	s.observe(ctx, "metadata-delete", start, err)
	return err
}

func (s *Service) deleteMetadata(ctx context.Context, user, path string, avu grid.AVU) error {
	if err := validateAVU(avu); err != nil {
		return err
	}

	err := runChecks(
		func() error { return s.checkUserExists(ctx, user) },
		func() error { return s.checkPathExists(ctx, path) },
		func() error { return s.checkWritable(ctx, user, path) },
	)
	if err != nil {
		return err
	}

	return s.deleteAVU(ctx, path, withUnitSentinel(avu))
}

// deleteAVU removes one stored triple using the encode-before-delete
// workaround: the value is first rewritten as base64 (some values cannot be
// deleted verbatim by the backing store), then the encoded triple is
// deleted.
func (s *Service) deleteAVU(ctx context.Context, path string, avu grid.AVU) error {
	encoded := grid.AVU{
		Attribute: avu.Attribute,
		Value:     base64.StdEncoding.EncodeToString([]byte(avu.Value)),
		Unit:      encodedUnit,
	}

	if err := s.store.ReplaceMetadata(ctx, path, avu, encoded); err != nil {
		return err
	}
	return s.store.DeleteMetadata(ctx, path, encoded)
}

// UpdateMetadata applies deletes first, then adds, in input order.
//
// The batch is NOT transactional: a failure mid-batch leaves prior items
// committed, and a delete of a triple that is not attached is a silent
// no-op. Callers must treat batch metadata updates as best-effort.
func (s *Service) UpdateMetadata(ctx context.Context, user, path string, adds, deletes []grid.AVU) error {
	ctx, span, start := s.begin(ctx, "metadata-update", user, telemetry.Path(path))
	defer span.End()

	err := s.updateMetadata(ctx, user, path, adds, deletes)
	s.observe(ctx, "metadata-update", start, err)
	return err
}

func (s *Service) updateMetadata(ctx context.Context, user, path string, adds, deletes []grid.AVU) error {
	for _, avu := range adds {
		if err := validateAVU(avu); err != nil {
			return err
		}
	}
	for _, avu := range deletes {
		if err := validateAVU(avu); err != nil {
			return err
		}
	}

	err := runChecks(
		func() error { return s.checkUserExists(ctx, user) },
		func() error { return s.checkPathExists(ctx, path) },
		func() error { return s.checkWritable(ctx, user, path) },
	)
	if err != nil {
		return err
	}

	for _, avu := range deletes {
		if err := s.deleteAVU(ctx, path, withUnitSentinel(avu)); err != nil {
			return err
		}
	}
	for _, avu := range adds {
		if err := s.store.AddMetadata(ctx, path, withUnitSentinel(avu)); err != nil {
			return err
		}
	}
	return nil
}

// TreeURLs returns the tree URLs stored on path, or an empty list when the
// attribute is absent.
func (s *Service) TreeURLs(ctx context.Context, user, path string) ([]string, error) {
	ctx, span, start := s.begin(ctx, "tree-urls-get", user, telemetry.Path(path))
	defer span.End()

	urls, err := s.treeURLs(ctx, user, path)
	s.observe(ctx, "tree-urls-get", start, err)
	return urls, err
}

func (s *Service) treeURLs(ctx context.Context, user, path string) ([]string, error) {
	err := runChecks(
		func() error { return s.checkUserExists(ctx, user) },
		func() error { return s.checkPathExists(ctx, path) },
		func() error { return s.checkReadable(ctx, user, path) },
	)
	if err != nil {
		return nil, err
	}

	return s.readTreeURLs(ctx, path)
}

func (s *Service) readTreeURLs(ctx context.Context, path string) ([]string, error) {
	avus, err := s.store.Metadata(ctx, path)
	if err != nil {
		return nil, err
	}

	for _, avu := range avus {
		if avu.Attribute != treeURLAttr {
			continue
		}

		var urls []string
		if err := json.Unmarshal([]byte(avu.Value), &urls); err != nil {
			return nil, dverr.NewInvalidMetadataPayload(
				fmt.Sprintf("stored tree-url list is not valid JSON: %v", err))
		}
		return urls, nil
	}
	return []string{}, nil
}

// SetTreeURLs appends urls to the serialized tree-URL list on path and
// rewrites the whole attribute.
//
// This is a read-modify-write with no concurrency guard: concurrent callers
// can lose updates. Accepted as-is; adding a version token is out of scope.
func (s *Service) SetTreeURLs(ctx context.Context, user, path string, urls []string) error {
	ctx, span, start := s.begin(ctx, "tree-urls-set", user, telemetry.Path(path))
	defer span.End()

	err := s.setTreeURLs(ctx, user, path, urls)
	s.observe(ctx, "tree-urls-set", start, err)
	return err
}

func (s *Service) setTreeURLs(ctx context.Context, user, path string, urls []string) error {
	err := runChecks(
		func() error { return s.checkUserExists(ctx, user) },
		func() error { return s.checkPathExists(ctx, path) },
		func() error { return s.checkWritable(ctx, user, path) },
	)
	if err != nil {
		return err
	}

	current, err := s.readTreeURLs(ctx, path)
	if err != nil {
		return err
	}
	combined := append(current, urls...)

	serialized, err := json.Marshal(combined)
	if err != nil {
		return dverr.NewInvalidMetadataPayload(fmt.Sprintf("serializing tree-url list: %v", err))
	}

	// Rewrite the whole attribute: drop the previous list, then store the
	// combined one.
	avus, err := s.store.Metadata(ctx, path)
	if err != nil {
		return err
	}
	for _, avu := range avus {
		if avu.Attribute == treeURLAttr {
			if err := s.deleteAVU(ctx, path, avu); err != nil {
				return err
			}
		}
	}

	return s.store.AddMetadata(ctx, path, grid.AVU{
		Attribute: treeURLAttr,
		Value:     string(serialized),
		Unit:      reservedUnit,
	})
}

// validateAVU rejects malformed triples before any backend call.
func validateAVU(avu grid.AVU) error {
	if avu.Attribute == "" {
		return dverr.NewInvalidMetadataPayload("attribute must not be empty")
	}
	return nil
}

// withUnitSentinel substitutes the reserved sentinel for an empty unit.
func withUnitSentinel(avu grid.AVU) grid.AVU {
	if avu.Unit == "" {
		avu.Unit = reservedUnit
	}
	return avu
}
