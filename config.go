package parallax3d

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

// Tunable names. These are the keys of the Tunables mapping.
const (
	ScreenHeight     = "screenHeight"
	Amplifier        = "amplifier"
	EyeXOffset       = "eyexoffset"
	EyeYOffset       = "eyeyoffset"
	EyeZOffset       = "eyezoffset"
	FOV              = "fov"
	LerpFactor       = "lerpfactor"
	MoveSpeed        = "movespeed"
	MouseSensitivity = "mouseSensitivity"
	WheelScale       = "wheelScale"
	FocalLength      = "focalLength"
	RealFaceWidth    = "realFaceWidth"
	FarPlane         = "far"
)

var (
	ErrUnknownTunable = errors.New("unknown tunable")
	ErrInvalidTunable = errors.New("invalid tunable value")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultTunableValues returns a fresh copy of the default tunables.
func DefaultTunableValues() map[string]float64 {
	return map[string]float64{
		ScreenHeight:     1.0,
		Amplifier:        4.0,
		EyeXOffset:       0,
		EyeYOffset:       0,
		EyeZOffset:       0,
		FOV:              40,
		LerpFactor:       0.2,
		MoveSpeed:        0.01,
		MouseSensitivity: 0.001,
		WheelScale:       0.001,
		FocalLength:      1738,
		RealFaceWidth:    0.15,
		FarPlane:         1000,
	}
}

// Tunables is the runtime-adjustable mapping of named numeric settings.
// It is read by the render loop every frame and may be written from any
// goroutine; writes take effect on the next frame.
type Tunables struct {
	mu     sync.RWMutex
	values map[string]float64
}

func NewTunables() *Tunables {
	return &Tunables{values: DefaultTunableValues()}
}

// Get returns the named value, or 0 for an unknown name.
func (t *Tunables) Get(name string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.values[name]
}

// Lookup is Get with an existence check.
func (t *Tunables) Lookup(name string) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[name]
	return v, ok
}

// Set updates a single value. Unknown names and values that would break an
// invariant are rejected and the mapping is left unchanged.
func (t *Tunables) Set(name string, value float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.values[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTunable, name)
	}
	if err := checkTunable(name, value); err != nil {
		return err
	}
	t.values[name] = value
	return nil
}

// Names returns the tunable names in sorted order.
func (t *Tunables) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.values))
	for k := range t.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of all values.
func (t *Tunables) Snapshot() map[string]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]float64, len(t.values))
	for k, v := range t.values {
		out[k] = v
	}
	return out
}

// Apply sets every value in m. It is all-or-nothing: if any entry is
// unknown or invalid nothing is changed.
func (t *Tunables) Apply(m map[string]float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for name, v := range m {
		if _, ok := t.values[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownTunable, name)
		}
		if err := checkTunable(name, v); err != nil {
			return err
		}
	}
	for name, v := range m {
		t.values[name] = v
	}
	return nil
}

func (t *Tunables) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Snapshot())
}

func (t *Tunables) UnmarshalJSON(data []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode tunables: %w", err)
	}
	if t.values == nil {
		t.values = DefaultTunableValues()
	}
	return t.Apply(m)
}

// WriteTo writes the tunables as indented JSON.
func (t *Tunables) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(t.Snapshot(), "", "  ")
	if err != nil {
		return 0, err
	}
	n, err := w.Write(append(data, '\n'))
	return int64(n), err
}

// SaveTunablesFile writes t to fileName.
func SaveTunablesFile(t *Tunables, fileName string) error {
	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("could not create tunables file %s: %w", fileName, err)
	}
	defer f.Close()

	if _, err := t.WriteTo(f); err != nil {
		return fmt.Errorf("could not write tunables file %s: %w", fileName, err)
	}
	return nil
}

// LoadTunablesFile applies the values stored in fileName on top of t.
func LoadTunablesFile(t *Tunables, fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("could not read tunables file %s: %w", fileName, err)
	}
	if err := t.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("error parsing tunables file %s: %w", fileName, err)
	}
	return nil
}

func checkTunable(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be finite", ErrInvalidTunable, name)
	}
	switch name {
	case ScreenHeight, FocalLength, RealFaceWidth, FarPlane:
		if v <= 0 {
			return fmt.Errorf("%w: %s must be > 0", ErrInvalidTunable, name)
		}
	case FOV:
		if v <= 0 || v >= 180 {
			return fmt.Errorf("%w: %s must be in (0, 180)", ErrInvalidTunable, name)
		}
	case LerpFactor:
		if v <= 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in (0, 1]", ErrInvalidTunable, name)
		}
	}
	return nil
}

// EnvTunables are the startup overrides read from the environment. Zero
// values mean "keep the default".
type EnvTunables struct {
	ScreenHeight  float64 `env:"PARALLAX_SCREEN_HEIGHT" validate:"gte=0"`
	Amplifier     float64 `env:"PARALLAX_AMPLIFIER"`
	FOV           float64 `env:"PARALLAX_FOV" validate:"gte=0,lt=180"`
	LerpFactor    float64 `env:"PARALLAX_LERP_FACTOR" validate:"gte=0,lte=1"`
	MoveSpeed     float64 `env:"PARALLAX_MOVE_SPEED"`
	FocalLength   float64 `env:"PARALLAX_FOCAL_LENGTH" validate:"gte=0"`
	RealFaceWidth float64 `env:"PARALLAX_FACE_WIDTH" validate:"gte=0"`
	TunablesFile  string  `env:"PARALLAX_TUNABLES_FILE"`
}

// LoadEnvTunables parses the PARALLAX_* environment into t.
func LoadEnvTunables(t *Tunables) (EnvTunables, error) {
	var cfg EnvTunables
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validate env: %w", err)
	}

	overrides := map[string]float64{}
	set := func(name string, v float64) {
		if v != 0 {
			overrides[name] = v
		}
	}
	set(ScreenHeight, cfg.ScreenHeight)
	set(Amplifier, cfg.Amplifier)
	set(FOV, cfg.FOV)
	set(LerpFactor, cfg.LerpFactor)
	set(MoveSpeed, cfg.MoveSpeed)
	set(FocalLength, cfg.FocalLength)
	set(RealFaceWidth, cfg.RealFaceWidth)

	if err := t.Apply(overrides); err != nil {
		return cfg, err
	}
	return cfg, nil
}
