package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"solar-system/backend/internal/core/domain/entity"
)

// ConstellationClass ключ таблицы дистанций для созвездий
const ConstellationClass = "constellation"

//go:embed catalog.yaml
var defaultCatalog []byte

// Ошибки валидации каталога
var (
	ErrMissingStandoff = errors.New("no standoff distance for class")
	ErrUnknownBody     = errors.New("unknown body")
	ErrDuplicateID     = errors.New("duplicate id")
)

// Catalog описывает содержимое сцены и таблицы, которые использует ядро
type Catalog struct {
	Standoff       map[string]float64  `yaml:"standoff"`
	Keys           map[string]string   `yaml:"keys"`
	Display        DisplayFlags        `yaml:"display"`
	Belt           BeltSpec            `yaml:"belt"`
	Starfield      StarfieldSpec       `yaml:"starfield"`
	Bodies         []BodySpec          `yaml:"bodies"`
	Constellations []ConstellationSpec `yaml:"constellations"`
}

// DisplayFlags начальные значения глобальных флагов видимости
type DisplayFlags struct {
	BodyLabels          bool `yaml:"body_labels"`
	BodyLines           bool `yaml:"body_lines"`
	ConstellationLabels bool `yaml:"constellation_labels"`
	ConstellationLines  bool `yaml:"constellation_lines"`
}

// BeltSpec параметры генерации пояса астероидов
type BeltSpec struct {
	Count       int     `yaml:"count"`
	InnerRadius float64 `yaml:"inner_radius"`
	OuterRadius float64 `yaml:"outer_radius"`
	MinSize     float64 `yaml:"min_size"`
	MaxSize     float64 `yaml:"max_size"`
}

// StarfieldSpec параметры фонового звездного поля
type StarfieldSpec struct {
	Count  int     `yaml:"count"`
	Extent float64 `yaml:"extent"`
}

// BodySpec строка каталога для тела. Углы в градусах.
type BodySpec struct {
	ID            string    `yaml:"id"`
	Name          string    `yaml:"name"`
	Class         string    `yaml:"class"`
	Parent        string    `yaml:"parent"`
	Radius        float64   `yaml:"radius"`
	OrbitRadius   float64   `yaml:"orbit_radius"`
	OrbitSpeed    float64   `yaml:"orbit_speed"`
	RotationSpeed float64   `yaml:"rotation_speed"`
	AxialTilt     float64   `yaml:"axial_tilt"`
	MeanLongitude float64   `yaml:"mean_longitude"`
	PeriodDays    float64   `yaml:"period_days"`
	Color         string    `yaml:"color"`
	Atmosphere    string    `yaml:"atmosphere"`
	Ring          *RingSpec `yaml:"ring"`
}

// RingSpec кольцо планеты
type RingSpec struct {
	InnerRadius float64 `yaml:"inner_radius"`
	OuterRadius float64 `yaml:"outer_radius"`
	Color       string  `yaml:"color"`
}

// ConstellationSpec строка каталога для созвездия
type ConstellationSpec struct {
	Name        string     `yaml:"name"`
	Symbol      string     `yaml:"symbol"`
	Stars       []StarSpec `yaml:"stars"`
	Connections [][]int    `yaml:"connections"`
}

// StarSpec звезда в координатах RA (часы) / Dec (градусы)
type StarSpec struct {
	Name       string  `yaml:"name"`
	RA         float64 `yaml:"ra"`
	Dec        float64 `yaml:"dec"`
	Brightness float64 `yaml:"brightness"`
}

// DefaultCatalog возвращает встроенный каталог
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog читает каталог из файла, при пустом пути возвращает встроенный
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog разбирает YAML и сразу валидирует каталог
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate проверяет, что у каждой сущности есть строка во всех таблицах.
// Новое тело без дистанции камеры или клавиша без тела - ошибка загрузки.
func (c *Catalog) Validate() error {
	ids := make(map[string]struct{}, len(c.Bodies))
	for _, b := range c.Bodies {
		if b.ID == "" {
			return errors.New("body without id")
		}
		if _, dup := ids[b.ID]; dup {
			return fmt.Errorf("%w: body %s", ErrDuplicateID, b.ID)
		}
		ids[b.ID] = struct{}{}

		if _, ok := c.Standoff[b.Class]; !ok {
			return fmt.Errorf("%w %q (body %s)", ErrMissingStandoff, b.Class, b.ID)
		}
		if b.Radius <= 0 {
			return fmt.Errorf("body %s: radius must be positive", b.ID)
		}
		if b.OrbitRadius < 0 {
			return fmt.Errorf("body %s: negative orbit radius", b.ID)
		}
		if b.Ring != nil && b.Ring.InnerRadius >= b.Ring.OuterRadius {
			return fmt.Errorf("body %s: ring inner radius must be below outer", b.ID)
		}
	}

	for _, b := range c.Bodies {
		if b.Parent == "" {
			continue
		}
		if _, ok := ids[b.Parent]; !ok {
			return fmt.Errorf("%w %q: parent of %s", ErrUnknownBody, b.Parent, b.ID)
		}
	}

	for key, id := range c.Keys {
		if _, ok := ids[id]; !ok {
			return fmt.Errorf("%w %q: bound to key %q", ErrUnknownBody, id, key)
		}
	}

	if len(c.Constellations) > 0 {
		if _, ok := c.Standoff[ConstellationClass]; !ok {
			return fmt.Errorf("%w %q", ErrMissingStandoff, ConstellationClass)
		}
	}

	names := make(map[string]struct{}, len(c.Constellations))
	for _, cs := range c.Constellations {
		if _, dup := names[cs.Name]; dup {
			return fmt.Errorf("%w: constellation %s", ErrDuplicateID, cs.Name)
		}
		names[cs.Name] = struct{}{}

		for i, conn := range cs.Connections {
			if len(conn) != 2 {
				return fmt.Errorf("constellation %s: connection %d must have 2 indices", cs.Name, i)
			}
		}
		if _, err := cs.Build(); err != nil {
			return err
		}
	}

	for class, d := range c.Standoff {
		if d <= 0 {
			return fmt.Errorf("standoff for %s must be positive", class)
		}
	}

	if c.Belt.Count > 0 && c.Belt.InnerRadius >= c.Belt.OuterRadius {
		return errors.New("belt inner radius must be below outer")
	}

	return nil
}

// BuildBodies создает тела в порядке каталога. Углы переводятся в радианы.
func (c *Catalog) BuildBodies() []*entity.CelestialBody {
	bodies := make([]*entity.CelestialBody, 0, len(c.Bodies))
	for _, b := range c.Bodies {
		body := &entity.CelestialBody{
			ID:            b.ID,
			Name:          b.Name,
			Class:         entity.BodyClass(b.Class),
			Radius:        b.Radius,
			OrbitRadius:   b.OrbitRadius,
			OrbitSpeed:    b.OrbitSpeed,
			RotationSpeed: b.RotationSpeed,
			AxialTilt:     mgl64.DegToRad(b.AxialTilt),
			MeanLongitude: mgl64.DegToRad(b.MeanLongitude),
			PeriodDays:    b.PeriodDays,
			ParentID:      b.Parent,
			Color:         b.Color,
			Atmosphere:    b.Atmosphere,
		}
		if body.Name == "" {
			body.Name = body.ID
		}
		if b.Ring != nil {
			body.Ring = &entity.Ring{
				InnerRadius: b.Ring.InnerRadius,
				OuterRadius: b.Ring.OuterRadius,
				Color:       b.Ring.Color,
			}
		}
		bodies = append(bodies, body)
	}
	return bodies
}

// BuildConstellations переводит звезды каталога в декартовы координаты
func (c *Catalog) BuildConstellations() ([]*entity.Constellation, error) {
	result := make([]*entity.Constellation, 0, len(c.Constellations))
	for _, cs := range c.Constellations {
		built, err := cs.Build()
		if err != nil {
			return nil, err
		}
		result = append(result, built)
	}
	return result, nil
}

// Build создает созвездие на небесной сфере
func (cs ConstellationSpec) Build() (*entity.Constellation, error) {
	con := &entity.Constellation{
		Name:   cs.Name,
		Symbol: cs.Symbol,
		Stars:  make([]entity.Star, 0, len(cs.Stars)),
	}
	for _, s := range cs.Stars {
		con.Stars = append(con.Stars, entity.Star{
			Name:       s.Name,
			Brightness: s.Brightness,
			Position:   entity.RaDecToCartesian(s.RA, s.Dec, entity.CelestialRadius),
		})
	}
	for _, conn := range cs.Connections {
		if len(conn) != 2 {
			return nil, fmt.Errorf("constellation %s: connection must have 2 indices", cs.Name)
		}
		con.Connections = append(con.Connections, [2]int{conn[0], conn[1]})
	}

	if err := con.Validate(); err != nil {
		return nil, err
	}
	return con, nil
}

// KeyMap возвращает копию таблицы клавиша -> id тела
func (c *Catalog) KeyMap() map[string]string {
	keys := make(map[string]string, len(c.Keys))
	for k, v := range c.Keys {
		keys[k] = v
	}
	return keys
}

// StandoffTable возвращает копию таблицы дистанций камеры
func (c *Catalog) StandoffTable() map[string]float64 {
	table := make(map[string]float64, len(c.Standoff))
	for k, v := range c.Standoff {
		table[k] = v
	}
	return table
}

// BodyIDs возвращает отсортированный список id тел
func (c *Catalog) BodyIDs() []string {
	ids := make([]string, 0, len(c.Bodies))
	for _, b := range c.Bodies {
		ids = append(ids, b.ID)
	}
	sort.Strings(ids)
	return ids
}
