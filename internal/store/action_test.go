package store

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAction(metric string) *AlertAction {
	return &AlertAction{
		ID:         uuid.New().String(),
		Metric:     metric,
		PluginName: "notify",
		ActionName: "posture_alert",
		Config:     json.RawMessage(`{"message": "sit up"}`),
		Enabled:    true,
	}
}

func TestAlertActionRepository_Create(t *testing.T) {
	t.Run("create and get by id", func(t *testing.T) {
		actions := newTestStore(t).AlertActions()

		action := newTestAction("neckFlexion")
		require.NoError(t, actions.Create(action))

		got, err := actions.GetByID(action.ID)
		require.NoError(t, err)
		assert.Equal(t, action.ID, got.ID)
		assert.Equal(t, "neckFlexion", got.Metric)
		assert.Equal(t, "notify", got.PluginName)
		assert.Equal(t, "posture_alert", got.ActionName)
		assert.JSONEq(t, `{"message": "sit up"}`, string(got.Config))
		assert.True(t, got.Enabled)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("nil config defaults to empty object", func(t *testing.T) {
		actions := newTestStore(t).AlertActions()

		action := newTestAction("cva")
		action.Config = nil
		require.NoError(t, actions.Create(action))

		got, err := actions.GetByID(action.ID)
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(got.Config))
	})

	t.Run("second binding for the same metric fails", func(t *testing.T) {
		actions := newTestStore(t).AlertActions()

		require.NoError(t, actions.Create(newTestAction("fsa")))
		assert.Error(t, actions.Create(newTestAction("fsa")))
	})

	t.Run("unknown metric name fails the check constraint", func(t *testing.T) {
		actions := newTestStore(t).AlertActions()

		assert.Error(t, actions.Create(newTestAction("legFlexion")))
	})
}

func TestAlertActionRepository_GetByMetric(t *testing.T) {
	t.Run("returns bound action", func(t *testing.T) {
		actions := newTestStore(t).AlertActions()

		action := newTestAction("cva")
		require.NoError(t, actions.Create(action))

		got, err := actions.GetByMetric("cva")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, action.ID, got.ID)
	})

	t.Run("unbound metric returns nil without error", func(t *testing.T) {
		actions := newTestStore(t).AlertActions()

		got, err := actions.GetByMetric("cva")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestAlertActionRepository_List(t *testing.T) {
	actions := newTestStore(t).AlertActions()

	require.NoError(t, actions.Create(newTestAction("neckFlexion")))
	require.NoError(t, actions.Create(newTestAction("cva")))
	require.NoError(t, actions.Create(newTestAction("fsa")))

	list, err := actions.List()
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestAlertActionRepository_Update(t *testing.T) {
	t.Run("updates fields", func(t *testing.T) {
		actions := newTestStore(t).AlertActions()

		action := newTestAction("neckFlexion")
		require.NoError(t, actions.Create(action))

		action.PluginName = "system-control"
		action.ActionName = "lock_screen"
		action.Enabled = false
		require.NoError(t, actions.Update(action))

		got, err := actions.GetByID(action.ID)
		require.NoError(t, err)
		assert.Equal(t, "system-control", got.PluginName)
		assert.Equal(t, "lock_screen", got.ActionName)
		assert.False(t, got.Enabled)
	})

	t.Run("missing action returns ErrNotFound", func(t *testing.T) {
		actions := newTestStore(t).AlertActions()

		action := newTestAction("neckFlexion")
		assert.ErrorIs(t, actions.Update(action), ErrNotFound)
	})
}

func TestAlertActionRepository_Delete(t *testing.T) {
	t.Run("removes action", func(t *testing.T) {
		actions := newTestStore(t).AlertActions()

		action := newTestAction("neckFlexion")
		require.NoError(t, actions.Create(action))
		require.NoError(t, actions.Delete(action.ID))

		_, err := actions.GetByID(action.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing action returns ErrNotFound", func(t *testing.T) {
		actions := newTestStore(t).AlertActions()

		assert.ErrorIs(t, actions.Delete("missing"), ErrNotFound)
	})

	t.Run("metric can be rebound after delete", func(t *testing.T) {
		actions := newTestStore(t).AlertActions()

		action := newTestAction("fsa")
		require.NoError(t, actions.Create(action))
		require.NoError(t, actions.Delete(action.ID))

		assert.NoError(t, actions.Create(newTestAction("fsa")))
	})
}
