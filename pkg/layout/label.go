package layout

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/ged2dot/pkg/config"
	"github.com/matzehuels/ged2dot/pkg/gedcom"
)

// Labeler maps an individual to the DOT label value of its box node. The
// returned string is written verbatim, so it must already be quoted or be
// an HTML-like <...> label.
type Labeler func(i *gedcom.Individual) string

// NewLabeler builds the label function described by cfg. Image paths are
// resolved against dir, usually the directory of the input file.
func NewLabeler(cfg *config.Config, dir string) Labeler {
	return func(i *gedcom.Individual) string {
		vars := map[string]string{
			"forename": i.Forename,
			"surname":  i.Surname,
			"birt":     i.Birth,
			"deat":     i.Death,
		}
		if cfg.AnonMode {
			vars["surname"], vars["forename"] = splitAnon(i.ID)
			vars["birt"] = anonYear(i.Birth)
			vars["deat"] = anonYear(i.Death)
		}

		format := cfg.NodeLabelPlain
		if cfg.Images {
			format = cfg.NodeLabelImage
			vars["picture"] = picture(cfg, dir, i)
		}
		return Expand(format, vars)
	}
}

func splitAnon(id string) (string, string) {
	if id == "" {
		return "", ""
	}
	return id[:1], id[1:]
}

func anonYear(year string) string {
	if len(year) > 1 {
		return "YYYY"
	}
	return year
}

// picture returns the image path for i, falling back to a per-sex
// placeholder when no image exists or names must stay hidden.
func picture(cfg *config.Config, dir string, i *gedcom.Individual) string {
	if !cfg.AnonMode {
		path := filepath.Join(dir, Expand(cfg.ImageFormat, map[string]string{
			"forename": i.Forename,
			"surname":  i.Surname,
			"birt":     i.Birth,
		}))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	sex := strings.ToLower(string(i.Sex))
	if sex == "" {
		sex = "u"
	}
	return filepath.Join(cfg.PlaceholderDir, "placeholder-"+sex+".png")
}

// Expand substitutes %(name)s references in format. %% is a literal
// percent sign. Unknown names are left untouched.
func Expand(format string, vars map[string]string) string {
	var b strings.Builder
	for {
		i := strings.IndexByte(format, '%')
		if i < 0 || i == len(format)-1 {
			b.WriteString(format)
			return b.String()
		}
		b.WriteString(format[:i])
		rest := format[i+1:]
		switch {
		case rest[0] == '%':
			b.WriteByte('%')
			format = rest[1:]
		case rest[0] == '(':
			end := strings.Index(rest, ")s")
			if end < 0 {
				b.WriteString(format[i:])
				return b.String()
			}
			name := rest[1:end]
			if v, ok := vars[name]; ok {
				b.WriteString(v)
			} else {
				b.WriteString(format[i : i+1+end+2])
			}
			format = rest[end+2:]
		default:
			b.WriteByte('%')
			format = rest
		}
	}
}

// color of a person box.
func color(sex gedcom.Sex) string {
	switch sex {
	case gedcom.SexMale:
		return "blue"
	case gedcom.SexFemale:
		return "pink"
	}
	return "black"
}
