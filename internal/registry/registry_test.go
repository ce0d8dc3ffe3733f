package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/blockfall/internal/core"
)

type stubGame struct{ title string }

func (g *stubGame) ID() string                           { return "stub" }
func (g *stubGame) Title() string                        { return g.title }
func (g *stubGame) Reset(core.RuntimeConfig)             {}
func (g *stubGame) Step(core.InputFrame) core.StepResult { return core.StepResult{} }
func (g *stubGame) Render(*core.Screen)                  {}
func (g *stubGame) State() core.GameState                { return core.GameState{} }
func (g *stubGame) Description() string                  { return "a stub" }

func TestRegisterCreateList(t *testing.T) {
	Register("zz-stub", func() Game { return &stubGame{title: "Stub"} })
	t.Cleanup(func() { unregister("zz-stub") })

	require.True(t, Exists("zz-stub"))
	g, err := Create("zz-stub")
	require.NoError(t, err)
	assert.Equal(t, "Stub", g.Title())

	var found *GameInfo
	for _, info := range List() {
		if info.ID == "zz-stub" {
			found = &info
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "a stub", found.Description)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("zz-dup", func() Game { return &stubGame{} })
	t.Cleanup(func() { unregister("zz-dup") })

	assert.Panics(t, func() {
		Register("zz-dup", func() Game { return &stubGame{} })
	})
}

func TestCreateUnknown(t *testing.T) {
	_, err := Create("nope")
	assert.ErrorContains(t, err, `unknown game "nope"`)
	assert.False(t, Exists("nope"))
}
