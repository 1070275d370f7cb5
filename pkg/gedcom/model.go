package gedcom

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sex of an individual as recorded by the SEX tag.
type Sex string

const (
	SexMale    Sex = "M"
	SexFemale  Sex = "F"
	SexUnknown Sex = "U"
)

// UnknownDeath marks a presumed death with no recorded date.
const UnknownDeath = "?"

// placeholderPrefix starts the identifiers of synthesized spouses.
const placeholderPrefix = "PH"

// Individual is one person. Famc and Fams are nil until Model.Resolve runs.
type Individual struct {
	ID       string
	Sex      Sex
	Forename string
	Surname  string
	Birth    string // year, possibly empty or non-numeric
	Death    string // year, UnknownDeath, or empty

	FamcID string // raw child-of family reference
	FamsID string // raw spouse-in family reference
	Famc   *Family
	Fams   *Family

	// Placeholder is set for spouses synthesized by the layout.
	Placeholder bool
}

// FullName returns "forename surname". Only used for DOT comments.
func (i *Individual) FullName() string {
	return i.Forename + " " + i.Surname
}

// SetBirth records a birth year. When the individual would be older than
// threshold years at now and no death is recorded, the death becomes
// UnknownDeath. Empty years are ignored and non-numeric years never infer
// a death.
func (i *Individual) SetBirth(year string, now time.Time, threshold int) {
	if year == "" {
		return
	}
	i.Birth = year
	born, err := strconv.Atoi(year)
	if err != nil {
		return
	}
	if now.Year()-born > threshold && i.Death == "" {
		i.Death = UnknownDeath
	}
}

// String implements fmt.Stringer for debug logging.
func (i *Individual) String() string {
	return fmt.Sprintf("id: %s, sex: %s, forename: %s, surname: %s, famc: %s, fams: %s, birt: %s, deat: %s",
		i.ID, i.Sex, i.Forename, i.Surname, i.FamcID, i.FamsID, i.Birth, i.Death)
}

// Family groups a husband, a wife and their children.
type Family struct {
	ID     string
	HusbID string
	WifeID string
	Husb   *Individual
	Wife   *Individual

	// Children holds child identifiers in source order.
	Children []string
}

// String implements fmt.Stringer for debug logging.
func (f *Family) String() string {
	return fmt.Sprintf("id: %s, husb: %s, wife: %s, chil: %v", f.ID, f.HusbID, f.WifeID, f.Children)
}

// Model owns every individual and family read from one input file.
// Lookups go through identifier indexes while the slices keep source order.
//
// A Model is not safe for concurrent use: the layout adds placeholder
// spouses to it while running.
type Model struct {
	individuals []*Individual
	families    []*Family
	indiByID    map[string]*Individual
	famByID     map[string]*Family

	// Dir is the directory of the input file, used to resolve image paths.
	Dir string

	placeholders int
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		indiByID: make(map[string]*Individual),
		famByID:  make(map[string]*Family),
	}
}

// AddIndividual registers i. It returns false and keeps the existing
// entry when the identifier is already taken.
func (m *Model) AddIndividual(i *Individual) bool {
	if _, ok := m.indiByID[i.ID]; ok {
		return false
	}
	m.indiByID[i.ID] = i
	m.individuals = append(m.individuals, i)
	return true
}

// AddFamily registers f. It returns false and keeps the existing entry
// when the identifier is already taken.
func (m *Model) AddFamily(f *Family) bool {
	if _, ok := m.famByID[f.ID]; ok {
		return false
	}
	m.famByID[f.ID] = f
	m.families = append(m.families, f)
	return true
}

// Individual returns the individual with the given id, or nil.
func (m *Model) Individual(id string) *Individual {
	return m.indiByID[id]
}

// Family returns the family with the given id, or nil.
func (m *Model) Family(id string) *Family {
	return m.famByID[id]
}

// Individuals returns all individuals in insertion order, placeholders last.
func (m *Model) Individuals() []*Individual {
	return m.individuals
}

// Families returns all families in source order.
func (m *Model) Families() []*Family {
	return m.families
}

// FindFamily returns the family with the given id from set, or nil.
func FindFamily(id string, set []*Family) *Family {
	for _, f := range set {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// Resolve replaces raw identifier references with links. It must run once,
// after the whole input has been read, since references may point forward.
func (m *Model) Resolve() {
	for _, i := range m.individuals {
		i.Famc = m.famByID[i.FamcID]
		i.Fams = m.famByID[i.FamsID]
	}
	for _, f := range m.families {
		f.Husb = m.indiByID[f.HusbID]
		f.Wife = m.indiByID[f.WifeID]
	}
}

// Husband returns the husband of f, synthesizing a placeholder on first
// access when the family has none.
func (m *Model) Husband(f *Family) *Individual {
	if f.Husb == nil {
		f.Husb = m.placeholder(SexMale)
		f.HusbID = f.Husb.ID
	}
	return f.Husb
}

// Wife returns the wife of f, synthesizing a placeholder on first access
// when the family has none.
func (m *Model) Wife(f *Family) *Individual {
	if f.Wife == nil {
		f.Wife = m.placeholder(SexFemale)
		f.WifeID = f.Wife.ID
	}
	return f.Wife
}

func (m *Model) placeholder(sex Sex) *Individual {
	var id string
	for {
		id = fmt.Sprintf("%s%d", placeholderPrefix, m.placeholders)
		m.placeholders++
		if _, taken := m.indiByID[id]; !taken {
			break
		}
	}
	i := &Individual{
		ID:          id,
		Sex:         sex,
		Forename:    "?",
		Placeholder: true,
	}
	m.AddIndividual(i)
	return i
}

// Escape makes an identifier usable as a DOT token: anything outside
// [A-Za-z0-9_] becomes an underscore.
func Escape(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, id)
}
