package scenefile

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	// Texture decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/softrast"
)

// Format identifies the document syntax.
type Format int

const (
	// YAML documents (.yaml, .yml).
	YAML Format = iota
	// TOML documents (.toml).
	TOML
)

func (f Format) String() string {
	switch f {
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ErrUnknownFormat is returned for file extensions with no decoder.
var ErrUnknownFormat = errors.New("scenefile: unknown format")

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// ImageLoader resolves an image href to a decoded texture.
type ImageLoader func(href string) (image.Image, error)

// Option configures decoding.
type Option func(*decoder)

// WithBaseDir resolves relative image hrefs against dir.
func WithBaseDir(dir string) Option {
	return func(d *decoder) {
		d.baseDir = dir
	}
}

// WithImageLoader replaces the file-system texture loader.
func WithImageLoader(l ImageLoader) Option {
	return func(d *decoder) {
		if l != nil {
			d.load = l
		}
	}
}

// Load reads the scene stored at path. Image hrefs are resolved relative
// to the file's directory.
func Load(path string, opts ...Option) (*softrast.Scene, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return nil, fmt.Errorf("scenefile: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	opts = append([]Option{WithBaseDir(filepath.Dir(path))}, opts...)
	return Decode(f, format, opts...)
}

// Decode reads a scene document from r.
func Decode(r io.Reader, format Format, opts ...Option) (*softrast.Scene, error) {
	var doc document
	switch format {
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("scenefile: decode yaml: %w", err)
		}
	case TOML:
		md, err := toml.NewDecoder(r).Decode(&doc)
		if err != nil {
			return nil, fmt.Errorf("scenefile: decode toml: %w", err)
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return nil, fmt.Errorf("scenefile: decode toml: unknown key %q", keys[0].String())
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}

	d := &decoder{textures: make(map[string]image.Image)}
	d.load = d.loadFile
	for _, opt := range opts {
		opt(d)
	}

	if doc.Width < 0 || doc.Height < 0 {
		return nil, fmt.Errorf("scenefile: negative canvas size %vx%v", doc.Width, doc.Height)
	}

	elems, err := d.elements(doc.Elements, "elements")
	if err != nil {
		return nil, err
	}

	softrast.Logger().Debug("scenefile: scene decoded",
		"format", format, "width", doc.Width, "height", doc.Height, "elements", len(elems))

	return &softrast.Scene{
		Width:    doc.Width,
		Height:   doc.Height,
		Elements: elems,
	}, nil
}

type document struct {
	Width    float64      `yaml:"width" toml:"width"`
	Height   float64      `yaml:"height" toml:"height"`
	Elements []elementDoc `yaml:"elements" toml:"elements"`
}

type elementDoc struct {
	Type string `yaml:"type" toml:"type"`

	Transform []float64 `yaml:"transform" toml:"transform"`
	Translate []float64 `yaml:"translate" toml:"translate"`
	Rotate    float64   `yaml:"rotate" toml:"rotate"`
	Scale     []float64 `yaml:"scale" toml:"scale"`

	Fill   string `yaml:"fill" toml:"fill"`
	Stroke string `yaml:"stroke" toml:"stroke"`

	Position  []float64   `yaml:"position" toml:"position"`
	Dimension []float64   `yaml:"dimension" toml:"dimension"`
	From      []float64   `yaml:"from" toml:"from"`
	To        []float64   `yaml:"to" toml:"to"`
	Center    []float64   `yaml:"center" toml:"center"`
	Radius    []float64   `yaml:"radius" toml:"radius"`
	Points    [][]float64 `yaml:"points" toml:"points"`
	Href      string      `yaml:"href" toml:"href"`

	Elements []elementDoc `yaml:"elements" toml:"elements"`
}

type decoder struct {
	baseDir  string
	load     ImageLoader
	textures map[string]image.Image
}

func (d *decoder) elements(docs []elementDoc, path string) ([]softrast.Element, error) {
	out := make([]softrast.Element, 0, len(docs))
	for i := range docs {
		where := fmt.Sprintf("%s[%d]", path, i)
		e, err := d.element(&docs[i], where)
		if err != nil {
			return nil, err
		}
		if e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// element converts one document entry. It returns a nil Element for
// unknown types.
func (d *decoder) element(doc *elementDoc, where string) (softrast.Element, error) {
	node, err := nodeOf(doc)
	if err != nil {
		return nil, fmt.Errorf("scenefile: %s: %w", where, err)
	}

	var p pointReader
	var e softrast.Element
	switch strings.ToLower(doc.Type) {
	case "point":
		e = &softrast.Dot{Node: node, Position: p.point("position", doc.Position)}
	case "line":
		e = &softrast.Line{Node: node, From: p.point("from", doc.From), To: p.point("to", doc.To)}
	case "polyline":
		e = &softrast.Polyline{Node: node, Points: p.points(doc.Points)}
	case "polygon":
		e = &softrast.Polygon{Node: node, Points: p.points(doc.Points)}
	case "rect":
		e = &softrast.Rect{Node: node, Position: p.optPoint("position", doc.Position), Dimension: p.point("dimension", doc.Dimension)}
	case "ellipse":
		e = &softrast.Ellipse{Node: node, Center: p.point("center", doc.Center), Radius: p.point("radius", doc.Radius)}
	case "image":
		img := &softrast.Image{Node: node, Position: p.optPoint("position", doc.Position), Dimension: p.point("dimension", doc.Dimension)}
		if p.err == nil {
			img.Texture, p.err = d.texture(doc.Href)
		}
		e = img
	case "group":
		children, err := d.elements(doc.Elements, where+".elements")
		if err != nil {
			return nil, err
		}
		e = &softrast.Group{Node: node, Elements: children}
	default:
		softrast.Logger().Debug("scenefile: skipping unknown element", "type", doc.Type, "at", where)
		return nil, nil
	}

	if p.err != nil {
		return nil, fmt.Errorf("scenefile: %s (%s): %w", where, doc.Type, p.err)
	}
	return e, nil
}

func nodeOf(doc *elementDoc) (softrast.Node, error) {
	var node softrast.Node
	var err error

	if node.Style.Fill, err = parseColor(doc.Fill); err != nil {
		return node, fmt.Errorf("fill: %w", err)
	}
	if node.Style.Stroke, err = parseColor(doc.Stroke); err != nil {
		return node, fmt.Errorf("stroke: %w", err)
	}
	m, err := transformOf(doc)
	if err != nil {
		return node, err
	}
	node.Transform = &m
	return node, nil
}

func parseColor(s string) (softrast.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return softrast.Transparent, nil
	}
	return softrast.ParseHex(s)
}

// transformOf builds the local transform. An explicit matrix wins over
// translate/rotate/scale.
func transformOf(doc *elementDoc) (softrast.Matrix, error) {
	if doc.Transform != nil {
		t := doc.Transform
		if len(t) != 6 {
			return softrast.Matrix{}, fmt.Errorf("transform needs 6 values, got %d", len(t))
		}
		return softrast.Matrix{A: t[0], B: t[1], C: t[2], D: t[3], E: t[4], F: t[5]}, nil
	}

	m := softrast.Identity()
	if doc.Translate != nil {
		if len(doc.Translate) != 2 {
			return m, fmt.Errorf("translate needs 2 values, got %d", len(doc.Translate))
		}
		m = m.Multiply(softrast.Translate(doc.Translate[0], doc.Translate[1]))
	}
	if doc.Rotate != 0 {
		m = m.Multiply(softrast.Rotate(doc.Rotate * math.Pi / 180))
	}
	switch len(doc.Scale) {
	case 0:
	case 1:
		m = m.Multiply(softrast.Scale(doc.Scale[0], doc.Scale[0]))
	case 2:
		m = m.Multiply(softrast.Scale(doc.Scale[0], doc.Scale[1]))
	default:
		return m, fmt.Errorf("scale needs 1 or 2 values, got %d", len(doc.Scale))
	}
	return m, nil
}

// pointReader converts coordinate pairs, keeping the first error.
type pointReader struct {
	err error
}

func (p *pointReader) point(name string, v []float64) softrast.Point {
	if p.err != nil {
		return softrast.Point{}
	}
	if len(v) != 2 {
		p.err = fmt.Errorf("%s needs 2 values, got %d", name, len(v))
		return softrast.Point{}
	}
	return softrast.Pt(v[0], v[1])
}

func (p *pointReader) optPoint(name string, v []float64) softrast.Point {
	if v == nil {
		return softrast.Point{}
	}
	return p.point(name, v)
}

func (p *pointReader) points(vs [][]float64) []softrast.Point {
	out := make([]softrast.Point, 0, len(vs))
	for i, v := range vs {
		out = append(out, p.point(fmt.Sprintf("points[%d]", i), v))
	}
	return out
}

// texture loads href once per document.
func (d *decoder) texture(href string) (image.Image, error) {
	if href == "" {
		return nil, errors.New("image needs an href")
	}
	if img, ok := d.textures[href]; ok {
		return img, nil
	}
	img, err := d.load(href)
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", href, err)
	}
	d.textures[href] = img
	return img, nil
}

func (d *decoder) loadFile(href string) (image.Image, error) {
	path := href
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.baseDir, path)
	}

	f, err := os.Open(path) //nolint:gosec // href comes from the scene document
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	img, _, err := image.Decode(f)
	return img, err
}
