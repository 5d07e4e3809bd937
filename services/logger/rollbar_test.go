package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/yuva/core"
	"github.com/trezcool/yuva/core/user"
)

func TestNewItem(t *testing.T) {
	cook := user.User{ID: "u1", Username: "fatma", Email: "fatma@yuva.test", Roles: []string{user.RoleStaffCook}}
	boom := errors.New("boom")

	t.Run("no args", func(t *testing.T) {
		it := newItem(nil)
		assert.Nil(t, it.err)
		assert.Nil(t, it.extras)
		assert.Nil(t, it.actor)
		assert.Equal(t, []interface{}{"msg"}, it.rollbarArgs("msg"))
	})

	t.Run("mixed args", func(t *testing.T) {
		parent := user.User{ID: "u2", Roles: []string{user.RoleParent}}
		it := newItem([]interface{}{
			boom,
			cook,
			map[string]interface{}{"child_id": "c1"},
			parent,
			errors.New("second"),
			map[string]interface{}{"date": "2024-03-04"},
			42,
		})

		assert.Equal(t, boom, it.err)
		require.NotNil(t, it.actor)
		assert.Equal(t, "u1", it.actor.ID, "only the first user is the person")
		assert.Equal(t, map[string]interface{}{
			"child_id":         "c1",
			"date":             "2024-03-04",
			"args":             []interface{}{"second", 42},
			"actor_roles":      []string{user.RoleStaffCook},
			"actor_staff_role": "cook",
		}, it.extras)
		assert.Equal(t, []interface{}{"msg", boom, it.extras}, it.rollbarArgs("msg"))
	})

	t.Run("non staff actor", func(t *testing.T) {
		it := newItem([]interface{}{user.User{ID: "u3", Roles: []string{user.RoleTeacher}}})
		assert.Equal(t, []string{user.RoleTeacher}, it.extras["actor_roles"])
		assert.NotContains(t, it.extras, "actor_staff_role")
	})
}

func TestRollbarLogger_echoesToStd(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), core.NewTestConfig())
	logger.Enable(false)

	logger.Warn("late pickup", map[string]interface{}{"child_id": "c1"})
	logger.Close()

	assert.Contains(t, buf.String(), "WARN late pickup")
	assert.Contains(t, buf.String(), "child_id:c1")
}
