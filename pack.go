package kerr

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

// orderWeight is the shader hint of spec.md §3/§9's design notes: not a
// physical quantity, just a downstream blending weight.
func orderWeight(order int) float32 {
	switch order {
	case 0:
		return 1.0
	case 1:
		return 0.3
	default:
		return 0.1
	}
}

// encodeFloat32LE packs a float32 buffer as little-endian IEEE-754 bytes,
// matching the `t{1..6}_rgba32f.bin` layout of spec.md §6 exactly.
func encodeFloat32LE(buf []float32) []byte {
	out := make([]byte, len(buf)*4)
	for i, v := range buf {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// TransferMaps holds, per order, a W·H·4 position buffer and a W·H·4
// physics buffer (spec.md §3/§4.6). Every pixel owns a disjoint range of
// each buffer, so concurrent writes from distinct pixels never race.
type TransferMaps struct {
	Width, Height int
	Position      [][]float32 // Position[k] has len Width*Height*4.
	Physics       [][]float32 // Physics[k] has len Width*Height*4.
}

// NewTransferMaps allocates zero-initialised buffers for rc.MaxOrders
// orders. Zero is the non-hit sentinel: the weight channel of 0 is the
// shader's mask (spec.md §4.6).
func NewTransferMaps(rc RenderConfig) *TransferMaps {
	tm := &TransferMaps{Width: rc.Width, Height: rc.Height}
	tm.Position = make([][]float32, rc.MaxOrders)
	tm.Physics = make([][]float32, rc.MaxOrders)
	for k := range tm.Position {
		tm.Position[k] = make([]float32, rc.Width*rc.Height*4)
		tm.Physics[k] = make([]float32, rc.Width*rc.Height*4)
	}
	return tm
}

// WriteHit writes one crossing's hit encoding into order k's slot for
// pixel (x, y): position = (r, sinφ, cosφ, weight_k), physics =
// (E, L_z, order, 0), per spec.md §4.6.
func (tm *TransferMaps) WriteHit(x, y, k int, rec CrossingRecord) {
	idx := (y*tm.Width + x) * 4
	sφ, cφ := math.Sincos(rec.Phi)

	pos := tm.Position[k]
	pos[idx+0] = float32(rec.R)
	pos[idx+1] = float32(sφ)
	pos[idx+2] = float32(cφ)
	pos[idx+3] = orderWeight(k)

	phys := tm.Physics[k]
	phys[idx+0] = float32(rec.E)
	phys[idx+1] = float32(rec.Lz)
	phys[idx+2] = float32(k)
	phys[idx+3] = 0
}

// EncodeOrder little-endian encodes order k's position and physics
// buffers, ready for a caller to write directly as `t{2k+1,2k+2}_rgba32f.bin`.
func (tm *TransferMaps) EncodeOrder(k int) (position, physics []byte, err error) {
	if k < 0 || k >= len(tm.Position) {
		return nil, nil, &ConfigError{Field: "order", Msg: fmt.Sprintf("order %d out of [0, %d)", k, len(tm.Position))}
	}
	return encodeFloat32LE(tm.Position[k]), encodeFloat32LE(tm.Physics[k]), nil
}

// EmissivityLUT is the 256-sample normalised Novikov–Thorne emissivity
// profile of spec.md §4.6, shared across all orders.
type EmissivityLUT [256]float32

// NewEmissivityLUT builds the LUT for a disc spanning [r_ISCO(dir), rOut]:
// F(r) ∝ r⁻³(1−√(r_ISCO/r)), zero below r_ISCO, normalised so the peak is
// ≈ 1.
func NewEmissivityLUT(bh BlackHole, dir OrbitDirection, rOut float64) EmissivityLUT {
	rISCO := bh.ISCO(dir)
	raw := make([]float64, len(EmissivityLUT{}))
	peak := 0.0
	for i := range raw {
		r := rISCO + (rOut-rISCO)*float64(i)/float64(len(raw)-1)
		if r <= rISCO {
			raw[i] = 0
			continue
		}
		f := math.Pow(r, -3) * (1 - math.Sqrt(rISCO/r))
		raw[i] = f
		if f > peak {
			peak = f
		}
	}
	var lut EmissivityLUT
	for i, f := range raw {
		if peak > 0 {
			f /= peak
		}
		lut[i] = float32(f)
	}
	return lut
}

// Encode returns the 256-float little-endian payload (`flux_r32f.bin`).
func (lut EmissivityLUT) Encode() []byte {
	return encodeFloat32LE(lut[:])
}

// ManifestURLs carries the relative texture URLs the front-end assigned
// after writing files to disk (file naming/layout is out of scope per
// spec.md §1; the core only shapes the manifest object around them).
type ManifestURLs struct {
	Order0Position, Order0Physics string
	Order1Position, Order1Physics string
	Order2Position, Order2Physics string
	Flux                          string
}

// Manifest is the JSON document of spec.md §6, one field per entry of
// §4.6's list.
type Manifest struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Preset string `json:"preset"`
	InclinationDeg float64 `json:"inclination_deg"`
	Spin          float64 `json:"spin"`
	MaxOrders     int     `json:"max_orders"`
	RISCO         float64 `json:"r_isco"`
	ROut          float64 `json:"r_out"`

	Order0PositionURL string `json:"order0_position_url"`
	Order0PhysicsURL  string `json:"order0_physics_url"`
	Order1PositionURL string `json:"order1_position_url,omitempty"`
	Order1PhysicsURL  string `json:"order1_physics_url,omitempty"`
	Order2PositionURL string `json:"order2_position_url,omitempty"`
	Order2PhysicsURL  string `json:"order2_physics_url,omitempty"`
	FluxURL           string `json:"flux_url"`

	DiscHits   int64  `json:"disc_hits"`
	Provenance string `json:"provenance,omitempty"`
}

// NewManifest assembles the manifest for a completed render. presetLabel
// and inclinationDeg are the front-end's `--preset` label and the
// corresponding degree value (Preset in config.go); order-conditional URLs
// are omitted below the relevant max_orders threshold automatically via
// the struct's `omitempty` tags.
func NewManifest(rc RenderConfig, bh BlackHole, presetLabel string, inclinationDeg float64, dir OrbitDirection, rOut float64, discHits int64, urls ManifestURLs) Manifest {
	m := Manifest{
		Width: rc.Width, Height: rc.Height,
		Preset: presetLabel, InclinationDeg: inclinationDeg,
		Spin: bh.Spin, MaxOrders: rc.MaxOrders,
		RISCO: bh.ISCO(dir), ROut: rOut,
		Order0PositionURL: urls.Order0Position,
		Order0PhysicsURL:  urls.Order0Physics,
		FluxURL:           urls.Flux,
		DiscHits:          discHits,
	}
	if rc.MaxOrders > 1 {
		m.Order1PositionURL = urls.Order1Position
		m.Order1PhysicsURL = urls.Order1Physics
	}
	if rc.MaxOrders > 2 {
		m.Order2PositionURL = urls.Order2Position
		m.Order2PhysicsURL = urls.Order2Physics
	}
	return m
}

// hpSlot is one high-precision table slot: either a hit (CrossingRecord)
// or, for the first order-0 slot of a non-hit pixel, a TerminationRecord
// (spec.md §4.6's intentional asymmetry — one authoritative termination
// record per ray, not one per order).
type hpSlot struct {
	hit         bool
	crossing    CrossingRecord
	termination TerminationRecord
	pixelX, pixelY int
}

// HighPrecisionTable is the optional dense per-(pixel, order) dataset of
// spec.md §4.6/§6.
type HighPrecisionTable struct {
	Width, Height int
	slots         [][]*hpSlot // slots[order][y*Width+x]; nil = uninitialised.
}

// NewHighPrecisionTable allocates an empty (all-nil) table.
func NewHighPrecisionTable(rc RenderConfig) *HighPrecisionTable {
	t := &HighPrecisionTable{Width: rc.Width, Height: rc.Height}
	t.slots = make([][]*hpSlot, rc.MaxOrders)
	for k := range t.slots {
		t.slots[k] = make([]*hpSlot, rc.Width*rc.Height)
	}
	return t
}

// WriteHit records a crossing at (x, y, order).
func (t *HighPrecisionTable) WriteHit(x, y, order int, rec CrossingRecord) {
	t.slots[order][y*t.Width+x] = &hpSlot{hit: true, crossing: rec, pixelX: x, pixelY: y}
}

// WriteTermination records the single authoritative termination for pixel
// (x, y) in its order-0 slot.
func (t *HighPrecisionTable) WriteTermination(x, y int, rec TerminationRecord) {
	t.slots[0][y*t.Width+x] = &hpSlot{hit: false, termination: rec, pixelX: x, pixelY: y}
}

// hpJSONEntry is the wire shape of one `positions[]` element.
type hpJSONEntry struct {
	Hit    bool `json:"hit"`
	PixelX int  `json:"pixel_x"`
	PixelY int  `json:"pixel_y"`
	Order  int  `json:"order"`

	R         float64 `json:"r,omitempty"`
	Phi       float64 `json:"phi,omitempty"`
	E         float64 `json:"e,omitempty"`
	Lz        float64 `json:"lz,omitempty"`
	Q         float64 `json:"q,omitempty"`
	B         float64 `json:"b,omitempty"`
	G         float64 `json:"g,omitempty"`
	Lambda    float64 `json:"lambda,omitempty"`
	PhiWraps  float64 `json:"phi_wraps,omitempty"`
	NullError float64 `json:"null_error,omitempty"`
	TurnsR    uint8   `json:"turns_r,omitempty"`
	TurnsTheta uint8  `json:"turns_theta,omitempty"`

	Escaped  bool `json:"escaped,omitempty"`
	Captured bool `json:"captured,omitempty"`
	Aborted  bool `json:"aborted,omitempty"`
}

// MarshalJSON produces `{"positions": [...]}`, filtering uninitialised
// slots, with hit/termination variants tagged exactly per spec.md §6.
func (t *HighPrecisionTable) MarshalJSON() ([]byte, error) {
	var doc struct {
		Positions []hpJSONEntry `json:"positions"`
	}
	for order, slots := range t.slots {
		for _, s := range slots {
			if s == nil {
				continue
			}
			e := hpJSONEntry{Hit: s.hit, PixelX: s.pixelX, PixelY: s.pixelY, Order: order}
			if s.hit {
				c := s.crossing
				e.R, e.Phi = c.R, c.Phi
				e.E, e.Lz, e.Q = c.E, c.Lz, c.Q
				e.B, e.G = c.B, c.G
				e.Lambda, e.PhiWraps = c.Lambda, c.PhiWraps
				e.NullError = c.NullError
				e.TurnsR, e.TurnsTheta = c.TurnsR, c.TurnsTheta
			} else {
				switch s.termination.Reason {
				case Escaped:
					e.Escaped = true
				case Captured:
					e.Captured = true
				case Aborted:
					e.Aborted = true
				}
				e.TurnsR, e.TurnsTheta = s.termination.TurnsR, s.termination.TurnsTheta
			}
			doc.Positions = append(doc.Positions, e)
		}
	}
	return json.Marshal(doc)
}
