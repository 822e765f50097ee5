package session_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pack/internal/adapters/cas"
	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/core/ports/mocks"
	"go.trai.ch/pack/internal/engine/cache"
	"go.trai.ch/pack/internal/engine/session"
	"go.uber.org/mock/gomock"
)

func TestSession_MemoizesResolutions(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockResolver(ctrl)

	from := domain.NewModuleID("src/a.js")
	resolver.EXPECT().Resolve(gomock.Any(), from, "./b").Return(domain.NewModuleID("src/b.js"), nil).Times(1)
	resolver.EXPECT().Resolve(gomock.Any(), from, "./missing").Return(domain.ModuleID{}, domain.ErrModuleNotFound).Times(1)

	s := session.New(resolver, cache.New(cas.Discard{}, 0))
	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)

	for range 3 {
		id, err := s.Resolve(t.Context(), from, "./b")
		require.NoError(t, err)
		assert.Equal(t, "src/b.js", id.String())

		_, err = s.Resolve(t.Context(), from, "./missing")
		require.ErrorIs(t, err, domain.ErrModuleNotFound)
	}
}

func TestSession_DistinctIDs(t *testing.T) {
	t.Parallel()

	c := cache.New(cas.Discard{}, 0)
	a := session.New(nil, c)
	b := session.New(nil, c)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Same(t, a.Cache, b.Cache)
}
