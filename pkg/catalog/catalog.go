package catalog

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/autograde/pkg/domain"
	"github.com/aretw0/autograde/pkg/hooks"
	"github.com/aretw0/autograde/pkg/registry"
	"gopkg.in/yaml.v3"
)

// Catalog is a validated, immutable set of exercise definitions.
type Catalog struct {
	StartMessage string
	EndMessage   string
	Exercises    []domain.Exercise
}

// NewRegistry creates a fresh registry, with every exercise incomplete.
func (c *Catalog) NewRegistry() (*registry.Registry, error) {
	return registry.New(c.Exercises...)
}

// LoadFile reads and builds a YAML catalogue with strict unknown-field
// rejection.
func LoadFile(path string, hookRegistry *hooks.Registry) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f, hookRegistry)
}

// Load parses a YAML catalogue from r and builds it.
func Load(r io.Reader, hookRegistry *hooks.Registry) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("decode catalog: empty document")
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return Build(&file, hookRegistry)
}

// Build validates definitions and compiles them into a Catalog.
// Every problem is reported at once in an *AggregateError.
func Build(file *File, hookRegistry *hooks.Registry) (*Catalog, error) {
	b := &builder{hooks: hookRegistry, seen: make(map[string]int)}
	cat := &Catalog{
		StartMessage: file.StartMessage,
		EndMessage:   file.EndMessage,
		Exercises:    make([]domain.Exercise, 0, len(file.Exercises)),
	}

	for i, def := range file.Exercises {
		cat.Exercises = append(cat.Exercises, b.exercise(i, def))
	}

	if len(b.errs) > 0 {
		return nil, &AggregateError{Errors: b.errs}
	}
	return cat, nil
}

type builder struct {
	hooks *hooks.Registry
	seen  map[string]int
	errs  []error
}

func (b *builder) fail(key, reason string, value any) {
	b.errs = append(b.errs, &ValidationError{Key: key, Reason: reason, Value: value})
}

func (b *builder) exercise(i int, def ExerciseDef) domain.Exercise {
	key := fmt.Sprintf("exercises[%d]", i)
	ex := domain.Exercise{
		Name:         def.Name,
		Sequence:     i,
		StartMessage: def.StartMessage,
		WinMessage:   def.WinMessage,
		Hint:         def.Hint,
		EndMessage:   def.EndMessage,
	}
	if def.Sequence != nil {
		ex.Sequence = *def.Sequence
	}

	switch prev, dup := b.seen[def.Name]; {
	case def.Name == "":
		b.fail(key+".name", "is required", nil)
	case dup:
		b.fail(key+".name", fmt.Sprintf("duplicates exercises[%d]", prev), def.Name)
	default:
		b.seen[def.Name] = i
	}

	ex.CommandRegex = b.pattern(key+".command_regex", def.CommandRegex)
	ex.CwdRegex = b.pattern(key+".cwd_regex", def.CwdRegex)
	ex.OutputRegex = b.pattern(key+".output_regex", def.OutputRegex)

	for j, fd := range def.FileSystemConditions {
		if c, ok := b.fileSystem(fmt.Sprintf("%s.filesystem_conditions[%d]", key, j), fd); ok {
			ex.FileSystemConditions = append(ex.FileSystemConditions, c)
		}
	}
	for j, ed := range def.EnvVarConditions {
		if c, ok := b.envVar(fmt.Sprintf("%s.env_var_conditions[%d]", key, j), ed); ok {
			ex.EnvVarConditions = append(ex.EnvVarConditions, c)
		}
	}

	ex.Eject = b.eject(key, def)
	return ex
}

func (b *builder) pattern(key, src string) *domain.Pattern {
	if src == "" {
		return nil
	}
	p, err := domain.CompilePattern(src)
	if err != nil {
		b.fail(key, err.Error(), src)
		return nil
	}
	return p
}

func (b *builder) fileSystem(key string, fd FileSystemDef) (domain.FileSystemCondition, bool) {
	state, err := domain.ParseExistState(fd.State)
	if err != nil {
		b.fail(key+".state", err.Error(), fd.State)
		return domain.FileSystemCondition{}, false
	}
	contentRegex := b.pattern(key+".content_regex", fd.ContentRegex)
	if fd.ContentRegex != "" && contentRegex == nil {
		return domain.FileSystemCondition{}, false
	}

	c, err := domain.NewFileSystemCondition(fd.Path, fd.Relative, state, fd.Directory, fd.Content, contentRegex)
	if err != nil {
		b.fail(key, err.Error(), nil)
		return domain.FileSystemCondition{}, false
	}
	return c, true
}

func (b *builder) envVar(key string, ed EnvVarDef) (domain.EnvVarCondition, bool) {
	ok := true
	if ed.Name == "" {
		b.fail(key+".name", "is required", nil)
		ok = false
	}
	state, err := domain.ParseExistState(ed.State)
	if err != nil {
		b.fail(key+".state", err.Error(), ed.State)
		ok = false
	}
	if state == domain.Absent && ed.ValueRegex != "" {
		b.fail(key+".value_regex", "not allowed when state is absent", ed.ValueRegex)
		ok = false
	}
	re := b.pattern(key+".value_regex", ed.ValueRegex)
	if ed.ValueRegex != "" && re == nil {
		ok = false
	}
	if !ok {
		return domain.EnvVarCondition{}, false
	}
	return domain.EnvVarCondition{Name: ed.Name, State: state, ValueRegex: re}, true
}

func (b *builder) eject(key string, def ExerciseDef) domain.EjectFunc {
	if def.Eject == "" && def.EjectExpr == "" {
		return nil
	}
	if def.Eject != "" && def.EjectExpr != "" {
		b.fail(key+".eject", "cannot be combined with eject_expr", def.Eject)
		return nil
	}
	if def.hasRules() {
		b.fail(key+".eject", "an eject hook replaces rule checks; remove the regex, filesystem and environment conditions", nil)
		return nil
	}

	if def.EjectExpr != "" {
		fn, err := hooks.Compile(def.EjectExpr)
		if err != nil {
			b.fail(key+".eject_expr", err.Error(), nil)
			return nil
		}
		return fn
	}

	fn, err := b.hooks.Lookup(def.Eject)
	if err != nil {
		b.fail(key+".eject", err.Error(), def.Eject)
		return nil
	}
	return fn
}
