package scene

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/portals/pkg/math3d"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Len(t, cfg.Portals, 2)
	assert.Equal(t, []string{"big", "small"}, cfg.ScaleContext)
	assert.Len(t, cfg.Paintings, 2)
	require.Len(t, cfg.Pairs, 1)
	assert.Equal(t, "gallery", cfg.Pairs[0].A.Name)
	assert.Equal(t, "garden", cfg.Pairs[0].B.Name)
	assert.NotEmpty(t, cfg.Props)
	assert.NotEmpty(t, cfg.Statics)

	assert.Equal(t, 0.5, cfg.Portals[1].Scale)
	assert.Equal(t, 5, cfg.Portals[0].RecursionLimit, "default recursion limit")
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[[portal]]
name = "a"

[[painting]]
name = "p"

[[pair]]

[[prop]]
`))
	require.NoError(t, err)

	assert.Equal(t, 60.0, cfg.Camera.FOV)
	assert.Equal(t, 9.8, cfg.Gravity)
	assert.Equal(t, defaultBackground, cfg.Background)
	assert.Equal(t, 1.6, cfg.Player.EyeHeight)

	pc := cfg.Portals[0]
	assert.Equal(t, 2.0, pc.Width)
	assert.Equal(t, 3.0, pc.Height)
	assert.Equal(t, 0.05, pc.NearClipOffset)
	assert.Equal(t, 1.0, pc.TriggerDepth)

	assert.Equal(t, 10.0, cfg.Paintings[0].ViewingDistance)
	assert.Equal(t, 160, cfg.Paintings[0].BaseWidth)

	pair := cfg.Pairs[0]
	assert.Equal(t, "pair0.a", pair.A.Name)
	assert.Equal(t, 4.0, pair.Height)
	assert.InDelta(t, 17.2, pair.PaintingFOV, 1e-9)

	assert.Equal(t, "prop0", cfg.Props[0].Name)
	assert.Equal(t, Vec{0.5, 0.5, 0.5}, cfg.Props[0].Size)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(`
[player]
velocity = 3
`))
	require.Error(t, err)

	var strict *toml.StrictMissingError
	assert.ErrorAs(t, err, &strict)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse([]byte(`[[portal]`))
	require.Error(t, err)

	var decodeErr *toml.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestParseIntegersIntoFloats(t *testing.T) {
	cfg, err := Parse([]byte(`
[player]
position = [1, 2, 3]
yaw = 90
`))
	require.NoError(t, err)
	assert.Equal(t, math3d.V3(1, 2, 3), cfg.Player.Position.Vec3())
	assert.Equal(t, 90.0, cfg.Player.Yaw)
}

func TestTransformPose(t *testing.T) {
	pose := Transform{Position: Vec{1, 2, 3}, Rotation: Vec{0, 90, 0}}.Pose()

	assert.Equal(t, math3d.V3(1, 2, 3), pose.Position)
	assert.Equal(t, math3d.V3(1, 1, 1), pose.Scale, "zero scale means 1")
	fwd := pose.Forward()
	assert.InDelta(t, -1, fwd.X, 1e-9)
	assert.InDelta(t, 0, fwd.Z, 1e-9)

	scaled := Transform{Scale: 0.5}.Pose()
	assert.Equal(t, 0.5, scaled.UniformScale())
}

func TestPairSettings(t *testing.T) {
	pc := PairConfig{Width: 3, Height: 5, ViewingDistance: 8, Transition: 1.5, Push: 0.25, PaintingFOV: 90}
	s := pc.settings()

	assert.Equal(t, 3.0, s.PortalWidth)
	assert.Equal(t, 1500*time.Millisecond, s.TransitionDuration)
	assert.Equal(t, 250*time.Millisecond, s.PushDuration)
	assert.InDelta(t, math.Pi/2, s.PaintingFOV, 1e-12)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "room.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[static]]
name = "statue"
mesh = "statue.glb"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "statue.glb"), cfg.Path(cfg.Statics[0].Mesh))
	assert.Equal(t, "/abs/x.glb", cfg.Path("/abs/x.glb"))

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadWrapsParseErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("nonsense = [\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scene "+path)
}
