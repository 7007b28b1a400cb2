package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableIdentifier(t *testing.T) {
	tableID := NewTableIdentifier("shop", "orders")
	assert.Equal(t, "shop", tableID.Database())
	assert.Equal(t, "shop", tableID.Schema())
	assert.Equal(t, "orders", tableID.Table())
	assert.Equal(t, "`shop`.`orders`", tableID.FullyQualifiedName())

	tempTableID := tableID.WithTable("orders__bulk").WithTemporary(true)
	assert.True(t, tempTableID.Temporary())
	assert.Equal(t, "`shop`.`orders__bulk`", tempTableID.FullyQualifiedName())
	assert.False(t, tableID.Temporary())
}
