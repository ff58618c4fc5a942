package routecache

import (
	"testing"

	"github.com/routewise/transitcore/internal/router"
	"github.com/stretchr/testify/assert"
)

func TestRouteKeyIsDeterministic(t *testing.T) {
	s := router.Settings{BusWaitTime: 6, BusVelocity: 40}
	assert.Equal(t, RouteKey("A", "B", s), RouteKey("A", "B", s))
}

func TestRouteKeyDiffersOnSettings(t *testing.T) {
	a := RouteKey("A", "B", router.Settings{BusWaitTime: 6, BusVelocity: 40})
	b := RouteKey("A", "B", router.Settings{BusWaitTime: 5, BusVelocity: 40})
	assert.NotEqual(t, a, b)
}

func TestRouteKeyDiffersOnEndpoints(t *testing.T) {
	s := router.Settings{BusWaitTime: 6, BusVelocity: 40}
	assert.NotEqual(t, RouteKey("A", "B", s), RouteKey("B", "A", s))
}

func TestLockKeyIsNamespacedFromRouteKey(t *testing.T) {
	key := RouteKey("A", "B", router.Settings{BusWaitTime: 6, BusVelocity: 40})
	assert.NotEqual(t, key, lockKey(key))
	assert.Contains(t, lockKey(key), key)
}
