package loam

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/autograde/pkg/catalog"
	"github.com/aretw0/autograde/pkg/hooks"
	"github.com/aretw0/loam"
	"github.com/spf13/cast"
)

// CatalogDocument is the ID of the optional document that carries the
// catalogue-wide messages. Its body is the start message and its front
// matter may set end_message.
const CatalogDocument = "_catalog"

// LoadDir opens dir as a read-only Loam repository and loads it as a catalogue,
// one document per exercise.
func LoadDir(ctx context.Context, dir string, hookRegistry *hooks.Registry) (*catalog.Catalog, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across serializers.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	return Load(ctx, loam.NewTypedRepository[ExerciseMetadata](repo), hookRegistry)
}

// Load builds a catalogue from every document of repo.
// Documents are ordered by ID; an exercise without an explicit sequence
// takes its position in that order.
func Load(ctx context.Context, repo *loam.TypedRepository[ExerciseMetadata], hookRegistry *hooks.Registry) (*catalog.Catalog, error) {
	docs, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].ID < docs[j].ID
	})

	file := &catalog.File{}
	position := 0
	for _, entry := range docs {
		// List only carries front matter; the body needs a full read.
		doc, err := repo.Get(ctx, entry.ID)
		if err != nil {
			return nil, fmt.Errorf("loam get failed for %s: %w", entry.ID, err)
		}
		id := trimExtension(doc.ID)
		body := strings.TrimSpace(doc.Content)

		if path.Base(id) == CatalogDocument {
			file.StartMessage = firstNonEmpty(doc.Data.StartMessage, body)
			file.EndMessage = doc.Data.EndMessage
			continue
		}

		def, err := toDef(id, doc.Data, body, position)
		if err != nil {
			return nil, err
		}
		file.Exercises = append(file.Exercises, def)
		position++
	}

	return catalog.Build(file, hookRegistry)
}

func toDef(id string, meta ExerciseMetadata, body string, position int) (catalog.ExerciseDef, error) {
	seq := position
	if meta.Sequence != nil {
		n, err := cast.ToIntE(meta.Sequence)
		if err != nil {
			return catalog.ExerciseDef{}, fmt.Errorf("document %s: invalid sequence %v: %w", id, meta.Sequence, err)
		}
		seq = n
	}

	return catalog.ExerciseDef{
		Name:                 firstNonEmpty(meta.Name, path.Base(id)),
		Sequence:             &seq,
		CommandRegex:         meta.CommandRegex,
		CwdRegex:             meta.CwdRegex,
		OutputRegex:          meta.OutputRegex,
		FileSystemConditions: meta.FileSystemConditions,
		EnvVarConditions:     meta.EnvVarConditions,
		Eject:                meta.Eject,
		EjectExpr:            meta.EjectExpr,
		StartMessage:         firstNonEmpty(meta.StartMessage, body),
		WinMessage:           meta.WinMessage,
		Hint:                 meta.Hint,
		EndMessage:           meta.EndMessage,
	}, nil
}

func trimExtension(id string) string {
	id = filepath.ToSlash(id)
	return strings.TrimSuffix(id, path.Ext(id))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
