package difftree

import (
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
)

// Validate checks files for shapes a session cannot represent. The returned
// error wraps ErrInvalidInput and a criterio.FieldErrors naming each bad
// field.
func Validate(files []File) error {
	var errs criterio.FieldErrorsBuilder

	seen := make(map[string]int, len(files))
	for i, f := range files {
		field := fmt.Sprintf("files[%d]", i)

		if f.Path == "" {
			errs = errs.Append(field+".path", errors.New("path is required"))
		} else if prev, ok := seen[f.Path]; ok {
			errs = errs.Append(field+".path", fmt.Errorf("duplicate path %q (also files[%d])", f.Path, prev))
		} else {
			seen[f.Path] = i
		}

		errs = validateFile(errs, field, f)
	}

	if err := errs.ToError(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func validateFile(errs criterio.FieldErrorsBuilder, field string, f File) criterio.FieldErrorsBuilder {
	var (
		modeSections int
		hasText      bool
		hasBinary    bool
		hasAdded     bool
		hasRemoved   bool
	)

	for j, s := range f.Sections {
		sf := fmt.Sprintf("%s.sections[%d]", field, j)

		if s.OldStart < 0 || s.NewStart < 0 {
			errs = errs.Append(sf, errors.New("start line cannot be negative"))
		}

		switch s.Kind {
		case Unchanged:
			hasText = true
			for k, l := range s.Lines {
				if l.Kind != Context {
					errs = errs.Append(fmt.Sprintf("%s.lines[%d]", sf, k), fmt.Errorf("unchanged section cannot hold %s lines", l.Kind))
				}
			}
		case Changed:
			hasText = true
			if len(s.Lines) == 0 {
				errs = errs.Append(sf, errors.New("changed section has no lines"))
			}
			for k, l := range s.Lines {
				switch l.Kind {
				case Added:
					hasAdded = true
				case Removed:
					hasRemoved = true
				default:
					errs = errs.Append(fmt.Sprintf("%s.lines[%d]", sf, k), errors.New("changed line must be added or removed"))
				}
			}
		case ModeChange:
			modeSections++
			if modeSections > 1 {
				errs = errs.Append(sf, errors.New("file has more than one file mode section"))
			}
			if len(s.Lines) > 0 {
				errs = errs.Append(sf+".lines", errors.New("file mode section cannot hold lines"))
			}
			if f.Mode.IsAbsent() && s.Mode.IsAbsent() {
				errs = errs.Append(sf+".mode", errors.New("file that did not exist cannot be deleted"))
			}
		case Binary:
			hasBinary = true
			if len(s.Lines) > 0 {
				errs = errs.Append(sf+".lines", errors.New("binary section cannot hold lines"))
			}
		default:
			errs = errs.Append(sf+".kind", fmt.Errorf("unknown section kind %d", int(s.Kind)))
		}
	}

	if hasBinary && hasText {
		errs = errs.Append(field+".sections", errors.New("binary and text sections cannot be mixed"))
	}
	if f.IsDeletion() && hasAdded {
		errs = errs.Append(field+".sections", errors.New("deleted file cannot have added lines"))
	}
	if f.IsCreation() && hasRemoved {
		errs = errs.Append(field+".sections", errors.New("created file cannot have removed lines"))
	}

	return errs
}
