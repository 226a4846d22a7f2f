package services

import (
	"context"
	"testing"

	"line-helpdesk/internal/dto"
	"line-helpdesk/internal/entities"
	"line-helpdesk/internal/filter"
	apperrors "line-helpdesk/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPolicyRepo struct {
	fakePolicyRepo
	lastCreate *dto.CreatePolicyDTO
}

func (r *recordingPolicyRepo) CreatePolicy(_ context.Context, d dto.CreatePolicyDTO) (uint64, error) {
	r.lastCreate = &d
	r.policies = append(r.policies, entities.Policy{ID: 1, Name: d.Name, ExtraFilter: d.ExtraFilter})
	return 1, nil
}

func TestPolicyService_ExtraFilter(t *testing.T) {
	base := dto.CreatePolicyDTO{Name: "follow-up", TriggerStageID: 3}

	t.Run("AST-фильтр сохраняется как есть", func(t *testing.T) {
		repo := &recordingPolicyRepo{}
		svc := NewPolicyService(repo, zap.NewNop())

		payload := base
		payload.ExtraFilter = `{"cond": {"field": "priority", "op": ">=", "value": 2}}`
		_, err := svc.CreatePolicy(context.Background(), payload)
		require.NoError(t, err)

		assert.Equal(t, payload.ExtraFilter, repo.lastCreate.ExtraFilter)
	})

	t.Run("унаследованный строковый формат нормализуется в AST", func(t *testing.T) {
		repo := &recordingPolicyRepo{}
		svc := NewPolicyService(repo, zap.NewNop())

		payload := base
		payload.ExtraFilter = "priority >= 2 AND team_id = 3"
		_, err := svc.CreatePolicy(context.Background(), payload)
		require.NoError(t, err)

		node, err := filter.Parse(repo.lastCreate.ExtraFilter)
		require.NoError(t, err)
		ok, err := filter.Eval(node, filter.Env{"priority": 2, "team_id": 3})
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = filter.Eval(node, filter.Env{"priority": 1, "team_id": 3})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("мусорный фильтр отклоняется с 422", func(t *testing.T) {
		repo := &recordingPolicyRepo{}
		svc := NewPolicyService(repo, zap.NewNop())

		payload := base
		payload.ExtraFilter = "priority ??? 2"
		_, err := svc.CreatePolicy(context.Background(), payload)
		require.Error(t, err)

		var httpErr *apperrors.HttpError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, 422, httpErr.Code)
		assert.Nil(t, repo.lastCreate)
	})

	t.Run("пустой фильтр допустим", func(t *testing.T) {
		repo := &recordingPolicyRepo{}
		svc := NewPolicyService(repo, zap.NewNop())

		_, err := svc.CreatePolicy(context.Background(), base)
		require.NoError(t, err)
		assert.Equal(t, "", repo.lastCreate.ExtraFilter)
	})
}
