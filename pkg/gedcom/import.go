package gedcom

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/transform"

	"github.com/matzehuels/ged2dot/pkg/config"
	gerrors "github.com/matzehuels/ged2dot/pkg/errors"
)

// maxLineSize bounds a single input line. Embedded notes can be long.
const maxLineSize = 1024 * 1024

// ImportOptions control how a tag stream is read into a Model.
type ImportOptions struct {
	// Exclude lists individual identifiers to drop, both as records and as
	// CHIL references.
	Exclude map[string]bool

	// Encoding is an IANA character set name. Empty means UTF-8.
	Encoding string

	// ConsiderAgeDead is the age after which a missing death is inferred.
	// Zero infers it for everyone born before the current year.
	ConsiderAgeDead int

	// Now returns the reference time for death inference. Defaults to time.Now.
	Now func() time.Time

	Logger *log.Logger
}

// OptionsFromConfig derives import options from a resolved configuration.
func OptionsFromConfig(cfg *config.Config) ImportOptions {
	return ImportOptions{
		Exclude:         cfg.Excluded(),
		Encoding:        cfg.InputEncoding,
		ConsiderAgeDead: cfg.ConsiderAgeDead,
	}
}

func (o *ImportOptions) setDefaults() {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Load opens path and reads it with Read. The returned model remembers the
// file's directory for image lookups.
func Load(path string, opts ImportOptions) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, gerrors.Wrap(gerrors.ErrCodeFileNotFound, err, "input file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	m, err := Read(f, opts)
	if err != nil {
		return nil, err
	}
	m.Dir = filepath.Dir(path)
	return m, nil
}

// Read parses a GEDCOM tag stream in a single forward pass and returns a
// resolved model. A malformed line aborts the import with a
// *errors.ParseError carrying the 1-based line number.
func Read(r io.Reader, opts ImportOptions) (*Model, error) {
	opts.setDefaults()

	enc, err := config.Encoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	imp := &importer{
		model: NewModel(),
		opts:  opts,
		now:   opts.Now(),
	}

	scanner := bufio.NewScanner(transform.NewReader(r, enc.NewDecoder()))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if err := imp.line(line); err != nil {
			return nil, &gerrors.ParseError{Line: lineNo, Text: line, Cause: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &gerrors.ParseError{Line: lineNo + 1, Cause: err}
	}
	imp.finalize()

	imp.model.Resolve()
	opts.Logger.Debug("imported model",
		"individuals", len(imp.model.Individuals()),
		"families", len(imp.model.Families()),
		"lines", lineNo)
	return imp.model, nil
}

// importer holds the state of one forward pass.
type importer struct {
	model *Model
	opts  ImportOptions
	now   time.Time

	indi    *Individual
	family  *Family
	inBirth bool
	inDeath bool
}

var errMissingValue = errors.New("missing value")

func (imp *importer) line(line string) error {
	if line == "" {
		return nil
	}
	tokens := strings.Split(line, " ")
	first := strings.TrimPrefix(tokens[0], "\ufeff")
	level, err := strconv.Atoi(first)
	if err != nil {
		return fmt.Errorf("invalid level %q", first)
	}
	rest := strings.Join(tokens[1:], " ")

	switch level {
	case 0:
		imp.record(rest)
	case 1:
		return imp.attribute(rest)
	case 2:
		imp.detail(rest)
	}
	return nil
}

// record handles a level 0 line: close the open record and maybe open a new one.
func (imp *importer) record(rest string) {
	imp.finalize()

	xref, tag, ok := strings.Cut(rest, " ")
	if !ok || len(xref) < 3 || !strings.HasPrefix(xref, "@") || !strings.HasSuffix(xref, "@") {
		return
	}
	id := strings.Trim(xref, "@")
	switch tag {
	case "INDI":
		if imp.opts.Exclude[id] {
			imp.opts.Logger.Debug("skipping excluded individual", "id", id)
			return
		}
		imp.indi = &Individual{ID: id}
	case "FAM":
		imp.family = &Family{ID: id}
	}
}

func (imp *importer) finalize() {
	if imp.indi != nil {
		if !imp.model.AddIndividual(imp.indi) {
			imp.opts.Logger.Warn("duplicate individual ignored", "id", imp.indi.ID)
		}
		imp.indi = nil
	}
	if imp.family != nil {
		if !imp.model.AddFamily(imp.family) {
			imp.opts.Logger.Warn("duplicate family ignored", "id", imp.family.ID)
		}
		imp.family = nil
	}
}

// attribute handles a level 1 line.
func (imp *importer) attribute(rest string) error {
	imp.inBirth = false
	imp.inDeath = false

	tag, value, _ := strings.Cut(rest, " ")
	value = strings.TrimSpace(value)

	if imp.indi != nil {
		switch tag {
		case "SEX":
			if value == "" {
				return errMissingValue
			}
			sex, _, _ := strings.Cut(value, " ")
			imp.indi.Sex = Sex(sex)
		case "NAME":
			forename, surname, found := strings.Cut(value, "/")
			imp.indi.Forename = strings.TrimSpace(forename)
			if found {
				surname, _, _ = strings.Cut(surname, "/")
				imp.indi.Surname = strings.TrimSpace(surname)
			}
		case "FAMC":
			if value == "" {
				return errMissingValue
			}
			if imp.indi.FamcID == "" {
				imp.indi.FamcID = pointer(value)
			}
		case "FAMS":
			if value == "" {
				return errMissingValue
			}
			if imp.indi.FamsID == "" {
				imp.indi.FamsID = pointer(value)
			}
		case "BIRT":
			imp.inBirth = true
		case "DEAT":
			imp.inDeath = true
		}
		return nil
	}

	if imp.family != nil {
		switch tag {
		case "HUSB", "WIFE", "CHIL":
			if value == "" {
				return errMissingValue
			}
		}
		switch tag {
		case "HUSB":
			imp.family.HusbID = pointer(value)
		case "WIFE":
			imp.family.WifeID = pointer(value)
		case "CHIL":
			id := pointer(value)
			if !imp.opts.Exclude[id] {
				imp.family.Children = append(imp.family.Children, id)
			}
		}
	}
	return nil
}

// detail handles a level 2 line. Only DATE inside BIRT or DEAT matters.
func (imp *importer) detail(rest string) {
	if imp.indi == nil {
		return
	}
	tag, value, _ := strings.Cut(rest, " ")
	if tag != "DATE" {
		return
	}
	year := ""
	if fields := strings.Fields(value); len(fields) > 0 {
		year = fields[len(fields)-1]
	}
	switch {
	case imp.inBirth:
		imp.indi.SetBirth(year, imp.now, imp.opts.ConsiderAgeDead)
	case imp.inDeath:
		imp.indi.Death = year
	}
}

// pointer strips the @ delimiters of a cross-reference value.
func pointer(value string) string {
	return strings.Trim(value, "@")
}
