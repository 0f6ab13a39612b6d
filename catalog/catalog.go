// Package catalog maps the tag names used in markup to canonical element types. A catalog is
// loaded from a YAML file and implements both markup.Resolver and markup.InverseResolver.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/fatih/camelcase"
	"github.com/go-playground/validator/v10"
	"golang.org/x/net/html/atom"
	"gopkg.in/yaml.v3"

	"github.com/dpotapov/go-canvas/markup"
)

// HTMLCategory is the category of plain HTML elements resolved by the HTML fallback.
const HTMLCategory = "HTML"

// tagNameRegex matches the tag names accepted by the markup scanner.
var tagNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9._-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("tagname", func(fl validator.FieldLevel) bool {
		return tagNameRegex.MatchString(fl.Field().String())
	})
	return v
}

// Config is the YAML representation of a catalog file.
type Config struct {
	Version string `yaml:"version" validate:"required,oneof=1"`

	// HTML enables the fallback for lowercase tags that name a known HTML element.
	HTML bool `yaml:"html"`

	Elements []Entry `yaml:"elements" validate:"dive"`
}

// Entry declares one element. Several tags may share a type; the first one declared is used
// when serializing. An empty DisplayName is derived from the type: "ImageGallery" is shown as
// "Image Gallery".
type Entry struct {
	Tag         string `yaml:"tag" validate:"required,tagname"`
	Type        string `yaml:"type" validate:"required"`
	DisplayName string `yaml:"display_name"`
	Category    string `yaml:"category" validate:"omitempty,excludesall=<>{}"`
}

// Catalog resolves tags to element types. The zero value and a nil *Catalog resolve nothing.
type Catalog struct {
	html   bool
	byTag  map[string]markup.Element
	byType map[string]string
}

var (
	_ markup.Resolver        = (*Catalog)(nil)
	_ markup.InverseResolver = (*Catalog)(nil)
)

// New builds a catalog from entries. The HTML fallback is disabled.
func New(entries ...Entry) (*Catalog, error) {
	return FromConfig(Config{Version: "1", Elements: entries})
}

// FromConfig validates cfg and builds the catalog.
func FromConfig(cfg Config) (*Catalog, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, validationError(err)
	}

	c := &Catalog{
		html:   cfg.HTML,
		byTag:  make(map[string]markup.Element, len(cfg.Elements)),
		byType: make(map[string]string, len(cfg.Elements)),
	}
	var errs []error
	for i, e := range cfg.Elements {
		if _, dup := c.byTag[e.Tag]; dup {
			errs = append(errs, fmt.Errorf("elements[%d]: duplicate tag %q", i, e.Tag))
			continue
		}
		name := e.DisplayName
		if name == "" {
			name = displayName(e.Type)
		}
		c.byTag[e.Tag] = markup.Element{Type: e.Type, DisplayName: name, Category: e.Category}
		if _, ok := c.byType[e.Type]; !ok {
			c.byType[e.Type] = e.Tag
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// Load reads a YAML catalog. Unknown fields are rejected.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("parse catalog: empty document")
		}
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return FromConfig(cfg)
}

// LoadFile reads a YAML catalog from the named file.
func LoadFile(name string) (*Catalog, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// Resolve implements markup.Resolver.
func (c *Catalog) Resolve(tag string) (markup.Element, bool) {
	if c == nil {
		return markup.Element{}, false
	}
	if el, ok := c.byTag[tag]; ok {
		return el, true
	}
	if c.isHTML(tag) {
		return markup.Element{Type: tag, DisplayName: tag, Category: HTMLCategory}, true
	}
	return markup.Element{}, false
}

// TagName implements markup.InverseResolver.
func (c *Catalog) TagName(typ string) (string, bool) {
	if c == nil {
		return "", false
	}
	if tag, ok := c.byType[typ]; ok {
		return tag, true
	}
	if c.isHTML(typ) {
		return typ, true
	}
	return "", false
}

// Len returns the number of declared tags.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byTag)
}

func (c *Catalog) isHTML(tag string) bool {
	return c.html && tag == strings.ToLower(tag) && atom.Lookup([]byte(tag)) != 0
}

func displayName(typ string) string {
	return strings.Join(camelcase.Split(typ), " ")
}

// validationError converts validator errors into one error per failed field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, e := range verrs {
		field := strings.TrimPrefix(e.Namespace(), "Config.")
		var msg string
		switch e.Tag() {
		case "required":
			msg = "is required"
		case "oneof":
			msg = fmt.Sprintf("must be one of [%s]", e.Param())
		case "tagname":
			msg = fmt.Sprintf("%q is not a valid tag name", e.Value())
		case "excludesall":
			msg = fmt.Sprintf("must not contain any of %q", e.Param())
		default:
			msg = "is invalid"
		}
		errs = append(errs, fmt.Errorf("%s %s", field, msg))
	}
	return errors.Join(errs...)
}
