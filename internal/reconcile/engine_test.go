package reconcile

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lab-inventory-system/internal/entities"
	"lab-inventory-system/pkg/eventbus"
	"lab-inventory-system/pkg/types"
	ws "lab-inventory-system/pkg/websocket"
)

func newTestClient(userID uint64) *ws.Client {
	hub := ws.NewHub(zap.NewNop())
	return &ws.Client{Hub: hub, Send: make(chan []byte, 16), UserID: userID}
}

func drainRefresh(t *testing.T, client *ws.Client) []string {
	t.Helper()
	var tables []string
	for {
		select {
		case raw := <-client.Send:
			var envelope ws.Envelope
			require.NoError(t, json.Unmarshal(raw, &envelope))
			require.Equal(t, ws.TypeRefresh, envelope.Type)
			payload, err := json.Marshal(envelope.Payload)
			require.NoError(t, err)
			var refresh ws.RefreshPayload
			require.NoError(t, json.Unmarshal(payload, &refresh))
			tables = append(tables, refresh.Table)
		default:
			return tables
		}
	}
}

func approvedRow(name string, labID uint64) *entities.Equipment {
	eq := &entities.Equipment{Name: name, LabID: labID, EquipmentTypeID: 1}
	eq.ApprovedByIncharge = null.Uint64From(2)
	eq.ApprovedByHOD = null.Uint64From(3)
	eq.RecomputeApproval()
	eq.CreatedAt = time.Now()
	return eq
}

func TestAttachSendsUnconditionalRefresh(t *testing.T) {
	client := newTestClient(1)
	engine := NewEngine(client.Hub, zap.NewNop())

	engine.Attach(client)

	tables := drainRefresh(t, client)
	require.Len(t, tables, 1)
	assert.Equal(t, "*", tables[0], "a fresh connection refetches everything instead of gap-filling")
}

func TestDeleteAlwaysRefreshes(t *testing.T) {
	client := newTestClient(1)
	engine := NewEngine(client.Hub, zap.NewNop())
	session := engine.Attach(client)
	drainRefresh(t, client)

	// Filter the deleted row could never match.
	session.SetFilter(TableEquipments, types.Filter{Search: "no-such-name"})

	err := engine.onMutation(context.Background(), eventbus.Mutation{
		Type:  eventbus.EventDelete,
		Table: TableEquipments,
		Row:   approvedRow("Microscope", 5),
	})
	require.NoError(t, err)

	tables := drainRefresh(t, client)
	require.Len(t, tables, 1, "a delete cannot be filter-matched, so it always refreshes")
	assert.Equal(t, TableEquipments, tables[0])
}

func TestUpdateRefreshesOnlyOnFilterMatch(t *testing.T) {
	client := newTestClient(1)
	engine := NewEngine(client.Hub, zap.NewNop())
	session := engine.Attach(client)
	drainRefresh(t, client)

	session.SetFilter(TableEquipments, types.Filter{LabID: u64(5)})

	err := engine.onMutation(context.Background(), eventbus.Mutation{
		Type:  eventbus.EventUpdate,
		Table: TableEquipments,
		Row:   approvedRow("Microscope", 6),
	})
	require.NoError(t, err)
	assert.Empty(t, drainRefresh(t, client), "a row outside the filter is irrelevant to this view")

	err = engine.onMutation(context.Background(), eventbus.Mutation{
		Type:  eventbus.EventInsert,
		Table: TableEquipments,
		Row:   approvedRow("Microscope", 5),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{TableEquipments}, drainRefresh(t, client))
}

func TestUnwatchedTableIsIgnored(t *testing.T) {
	client := newTestClient(1)
	engine := NewEngine(client.Hub, zap.NewNop())
	engine.Attach(client)
	drainRefresh(t, client)

	err := engine.onMutation(context.Background(), eventbus.Mutation{
		Type:  eventbus.EventInsert,
		Table: TableEquipments,
		Row:   approvedRow("Microscope", 5),
	})
	require.NoError(t, err)
	assert.Empty(t, drainRefresh(t, client), "no filter registered means the table is not watched")
}

func TestSetFilterForUserUpdatesAllSessions(t *testing.T) {
	hub := ws.NewHub(zap.NewNop())
	engine := NewEngine(hub, zap.NewNop())

	first := &ws.Client{Hub: hub, Send: make(chan []byte, 16), UserID: 1}
	second := &ws.Client{Hub: hub, Send: make(chan []byte, 16), UserID: 1}
	other := &ws.Client{Hub: hub, Send: make(chan []byte, 16), UserID: 2}
	s1 := engine.Attach(first)
	s2 := engine.Attach(second)
	s3 := engine.Attach(other)

	updated := engine.SetFilterForUser(1, TableIssues, types.Filter{Status: "open"})
	assert.Equal(t, 2, updated)

	_, watching := s1.CurrentFilter(TableIssues)
	assert.True(t, watching)
	_, watching = s2.CurrentFilter(TableIssues)
	assert.True(t, watching)
	_, watching = s3.CurrentFilter(TableIssues)
	assert.False(t, watching, "other users' sessions are untouched")
}

func TestDetachOnClose(t *testing.T) {
	client := newTestClient(1)
	engine := NewEngine(client.Hub, zap.NewNop())
	session := engine.Attach(client)
	session.SetFilter(TableEquipments, types.Filter{})
	drainRefresh(t, client)

	require.NotNil(t, client.OnClose)
	client.OnClose()

	err := engine.onMutation(context.Background(), eventbus.Mutation{
		Type:  eventbus.EventInsert,
		Table: TableEquipments,
		Row:   approvedRow("Microscope", 5),
	})
	require.NoError(t, err)
	assert.Empty(t, drainRefresh(t, client), "a detached session receives nothing")
}
