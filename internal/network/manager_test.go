package network

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-netsched/infrastructure/modules"
	"github.com/ahrav/go-netsched/internal/domain"
	"github.com/ahrav/go-netsched/internal/ports"
	"github.com/ahrav/go-netsched/internal/testutils"
)

func newTestNetwork(t *testing.T) (*Manager, map[string]ports.ExecutableModule) {
	t.Helper()

	src, err := modules.NewConstantModule("src", modules.ConstantConfig{Value: 1})
	require.NoError(t, err)
	scale, err := modules.NewScaleModule("scale", modules.DefaultScaleConfig())
	require.NoError(t, err)
	sum, err := modules.NewSumModule("sum", modules.DefaultSumConfig())
	require.NoError(t, err)
	view, err := modules.NewViewerModule("view", modules.DefaultViewerConfig())
	require.NoError(t, err)

	mgr := New()
	byName := map[string]ports.ExecutableModule{}
	for _, m := range []ports.ExecutableModule{src, scale, sum, view} {
		require.NoError(t, mgr.AddModule(m))
		byName[m.InstanceName()] = m
	}
	return mgr, byName
}

func TestManager_AddModule(t *testing.T) {
	mgr, byName := newTestNetwork(t)

	assert.Equal(t, []string{"src", "scale", "sum", "view"}, testutils.Names(mgr.Modules()))
	assert.Equal(t, 4, mgr.Len())

	m, ok := mgr.Module("sum")
	require.True(t, ok)
	assert.Same(t, byName["sum"], m)

	_, ok = mgr.Module("missing")
	assert.False(t, ok)

	dup, err := modules.NewPassthroughModule("src")
	require.NoError(t, err)
	err = mgr.AddModule(dup)
	assert.ErrorIs(t, err, ErrDuplicateModule)

	assert.ErrorIs(t, mgr.AddModule(nil), ErrNilModule)
}

func TestManager_Connect(t *testing.T) {
	tests := []struct {
		name     string
		producer string
		outIdx   int
		consumer string
		inIdx    int
		wantErr  error
	}{
		{name: "valid", producer: "src", outIdx: 0, consumer: "scale", inIdx: 0},
		{name: "unknown producer", producer: "nope", consumer: "scale", wantErr: ports.ErrModuleNotFound},
		{name: "unknown consumer", producer: "src", consumer: "nope", wantErr: ports.ErrModuleNotFound},
		{name: "output out of range", producer: "src", outIdx: 1, consumer: "scale", wantErr: ports.ErrPortOutOfRange},
		{name: "input out of range", producer: "src", consumer: "scale", inIdx: 3, wantErr: ports.ErrPortOutOfRange},
		{name: "viewer has no outputs", producer: "view", consumer: "scale", wantErr: ports.ErrPortOutOfRange},
		{name: "self connection allowed", producer: "scale", consumer: "scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, _ := newTestNetwork(t)
			err := mgr.Connect(tt.producer, tt.outIdx, tt.consumer, tt.inIdx)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, mgr.Connections())
				return
			}
			require.NoError(t, err)
			assert.Len(t, mgr.Connections(), 1)
		})
	}

	t.Run("input port accepts one wire", func(t *testing.T) {
		mgr, _ := newTestNetwork(t)
		require.NoError(t, mgr.Connect("src", 0, "sum", 0))

		assert.ErrorIs(t, mgr.Connect("src", 0, "sum", 0), ErrDuplicateConnection)
		assert.ErrorIs(t, mgr.Connect("scale", 0, "sum", 0), ports.ErrPortInUse)
		require.NoError(t, mgr.Connect("src", 0, "sum", 1))
	})
}

func TestManager_ConsumerModules(t *testing.T) {
	mgr, byName := newTestNetwork(t)
	require.NoError(t, mgr.Connect("src", 0, "sum", 0))
	require.NoError(t, mgr.Connect("src", 0, "sum", 1))
	require.NoError(t, mgr.Connect("src", 0, "scale", 0))
	require.NoError(t, mgr.Connect("sum", 0, "view", 0))

	consumers := mgr.ConsumerModules(byName["src"])
	assert.Equal(t, []string{"sum", "scale"}, testutils.Names(consumers), "distinct consumers in wiring order")
	assert.Empty(t, mgr.ConsumerModules(byName["view"]))

	producers := mgr.ProducersOf(byName["sum"])
	require.Len(t, producers, 2)
	assert.Equal(t, 0, producers[0].InputIdx)
	assert.Equal(t, 1, producers[1].InputIdx)
}

func TestManager_DisconnectAndRemove(t *testing.T) {
	mgr, byName := newTestNetwork(t)
	require.NoError(t, mgr.Connect("src", 0, "scale", 0))
	require.NoError(t, mgr.Connect("scale", 0, "sum", 0))
	require.NoError(t, mgr.Connect("sum", 0, "view", 0))

	require.NoError(t, mgr.Disconnect("view", 0))
	assert.ErrorIs(t, mgr.Disconnect("view", 0), ErrNotConnected)
	assert.Empty(t, mgr.ConsumerModules(byName["sum"]))

	require.NoError(t, mgr.RemoveModule("scale"))
	assert.Empty(t, mgr.Connections())
	assert.Equal(t, []string{"src", "sum", "view"}, testutils.Names(mgr.Modules()))
	assert.ErrorIs(t, mgr.RemoveModule("scale"), ports.ErrModuleNotFound)
}

func TestManager_ConcurrentReads(t *testing.T) {
	mgr, byName := newTestNetwork(t)
	require.NoError(t, mgr.Connect("src", 0, "scale", 0))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, mgr.ConsumerModules(byName["src"]), 1)
			assert.Len(t, mgr.Modules(), 4)
		}()
	}
	wg.Wait()
}

func TestRenderDOT(t *testing.T) {
	mgr, byName := newTestNetwork(t)
	require.NoError(t, mgr.Connect("src", 0, "scale", 0))
	require.NoError(t, mgr.Connect("scale", 0, "view", 0))

	t.Run("without schedule", func(t *testing.T) {
		out, err := RenderDOT(mgr, nil)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "digraph network {"))
		assert.Contains(t, out, `"src"->"scale"`)
		assert.Contains(t, out, `"scale"->"view"`)
		assert.Contains(t, out, "box3d")
	})

	t.Run("with schedule positions", func(t *testing.T) {
		sched := domain.Schedule{
			domain.NewNode(byName["src"]),
			domain.NewNode(byName["scale"]),
			domain.NewNode(byName["sum"]),
			domain.NewViewNode(byName["view"], domain.SegmentInitial),
			domain.NewViewNode(byName["view"], domain.SegmentFinal),
		}
		out, err := RenderDOT(mgr, sched)
		require.NoError(t, err)
		assert.Contains(t, out, `"src #1"`)
		assert.Contains(t, out, `"view #5/#4"`)
	})
}
