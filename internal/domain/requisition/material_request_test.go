package requisition

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sitestock/backend/internal/domain/identity"
	"github.com/sitestock/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(role identity.Role, siteID *uuid.UUID) *identity.User {
	return &identity.User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Role:              role,
		SiteID:            siteID,
		Status:            identity.UserStatusActive,
	}
}

func lines(qty ...int64) []RequestItem {
	items := make([]RequestItem, len(qty))
	for i, q := range qty {
		items[i] = RequestItem{ItemID: uuid.New(), RequestedQty: decimal.NewFromInt(q)}
	}
	return items
}

func TestNewMaterialRequest(t *testing.T) {
	site := uuid.New()

	t.Run("junior engineer request goes to site store incharge", func(t *testing.T) {
		mr, err := NewMaterialRequest("MR-0001", newUser(identity.RoleJuniorSiteEngineer, &site), nil, lines(5, 7))
		require.NoError(t, err)
		assert.Equal(t, StatusPending, mr.Status)
		assert.Equal(t, identity.RoleSiteStoreIncharge, mr.ApproverRole)
		assert.Equal(t, &site, mr.SiteID)
		assert.False(t, mr.IsTopOfChain())
		assert.Len(t, mr.Items, 2)
		assert.NotEqual(t, uuid.Nil, mr.Items[0].ID)
	})

	t.Run("center store incharge request is top of chain", func(t *testing.T) {
		mr, err := NewMaterialRequest("MR-0002", newUser(identity.RoleCenterStoreIncharge, nil), nil, lines(50))
		require.NoError(t, err)
		assert.True(t, mr.IsTopOfChain())
		assert.Equal(t, identity.RolePurchaseManager, mr.ApproverRole)
	})

	t.Run("roles outside the chain cannot request", func(t *testing.T) {
		_, err := NewMaterialRequest("MR-0003", newUser(identity.RoleSecurityGuard, nil), nil, lines(1))
		assert.True(t, errors.Is(err, shared.ErrForbidden))
	})

	t.Run("rejects empty and non positive lines", func(t *testing.T) {
		_, err := NewMaterialRequest("MR-0004", newUser(identity.RoleSiteStoreIncharge, &site), nil, nil)
		assert.True(t, errors.Is(err, shared.ErrValidation))

		_, err = NewMaterialRequest("MR-0004", newUser(identity.RoleSiteStoreIncharge, &site), nil, lines(0))
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestMaterialRequest_Approve(t *testing.T) {
	site := uuid.New()
	other := uuid.New()

	t.Run("approved by the next level", func(t *testing.T) {
		mr, err := NewMaterialRequest("MR-0001", newUser(identity.RoleJuniorSiteEngineer, &site), nil, lines(5))
		require.NoError(t, err)
		mr.ClearDomainEvents()

		approver := newUser(identity.RoleSiteStoreIncharge, &site)
		require.NoError(t, mr.Approve(approver))
		assert.Equal(t, StatusApproved, mr.Status)
		assert.Equal(t, approver.ID, *mr.ApprovedBy)
		assert.NotNil(t, mr.ApprovedAt)
		assert.Equal(t, 1, mr.Version)
		require.Len(t, mr.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeMaterialRequestApproved, mr.GetDomainEvents()[0].EventType())
		assert.False(t, mr.CanDelete())
	})

	t.Run("double approval is an invalid state", func(t *testing.T) {
		mr, _ := NewMaterialRequest("MR-0001", newUser(identity.RoleSiteStoreIncharge, &site), nil, lines(5))
		approver := newUser(identity.RoleCenterStoreIncharge, nil)
		require.NoError(t, mr.Approve(approver))
		assert.True(t, errors.Is(mr.Approve(approver), shared.ErrInvalidState))
	})

	t.Run("store incharge of another site is refused", func(t *testing.T) {
		mr, _ := NewMaterialRequest("MR-0001", newUser(identity.RoleJuniorSiteEngineer, &site), nil, lines(5))
		err := mr.Approve(newUser(identity.RoleSiteStoreIncharge, &other))
		assert.True(t, errors.Is(err, shared.ErrForbidden))
		assert.Equal(t, StatusPending, mr.Status)
	})
}

func TestMaterialRequest_TotalsByItem(t *testing.T) {
	item := uuid.New()
	mr := &MaterialRequest{Items: []RequestItem{
		{ItemID: item, RequestedQty: decimal.NewFromInt(2)},
		{ItemID: item, RequestedQty: decimal.NewFromInt(3)},
	}}
	assert.True(t, decimal.NewFromInt(5).Equal(mr.TotalsByItem()[item]))
}
