package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientReadsLegacyOrdersField(t *testing.T) {
	payload := `{"id":2,"name":"Maria Souza","phone":"9876-5432","orders":[{"id":7,"name":"Mesa 3","total":"50","totalPaid":"20","isClosed":true}]}`

	var client Client
	require.NoError(t, json.Unmarshal([]byte(payload), &client))

	assert.Equal(t, "Maria Souza", client.Name)
	require.Len(t, client.CreditedOrders, 1)
	assert.Equal(t, int64(7), client.CreditedOrders[0].ID)
	assert.True(t, client.Due().Equal(money("30")))
}

func TestClientPrefersCreditedOrdersField(t *testing.T) {
	payload := `{"id":1,"name":"João Silva","creditedOrders":[],"orders":[{"id":9,"total":"10","totalPaid":"0"}]}`

	var client Client
	require.NoError(t, json.Unmarshal([]byte(payload), &client))

	assert.Empty(t, client.CreditedOrders)
	assert.True(t, client.Due().IsZero())

	encoded, err := json.Marshal(client)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"creditedOrders":[]`)
	assert.NotContains(t, string(encoded), `"orders"`)
}
