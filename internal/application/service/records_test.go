package service

import (
	"context"
	"errors"
	"testing"

	gomock "github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TemirB/invoice-processor/internal/domain"
	"github.com/TemirB/invoice-processor/internal/observability"
)

func TestAppend(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	l := zap.NewNop()
	m := observability.NewNoop()
	rec := record(t, "One")
	storeErr := errors.New("db down")

	testCases := []struct {
		name string

		setupMocks func() *RecordService
		wantErr    error
	}{
		{
			name: "Success",

			setupMocks: func() *RecordService {
				store := NewMockRecordStore(ctrl)
				cache := NewMockCache(ctrl)

				store.EXPECT().Upsert(ctx, rec).Return(nil)
				cache.EXPECT().Set(rec)
				return NewRecordService(cache, store, l, m)
			},
		},
		{
			name: "Store error",

			setupMocks: func() *RecordService {
				store := NewMockRecordStore(ctrl)
				store.EXPECT().Upsert(ctx, rec).Return(storeErr)
				return NewRecordService(NewMockCache(ctrl), store, l, m)
			},

			wantErr: storeErr,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.setupMocks()
			err := s.Append(ctx, rec)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestGetWithStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	rec := record(t, "88")
	l := zap.NewNop()
	m := observability.NewNoop()

	testCases := []struct {
		name string

		setupMocks func() *RecordService

		expected domain.OrderRecord
		source   LookupSource
		wantErr  error
	}{
		{
			name: "Record fetched from cache",

			setupMocks: func() *RecordService {
				cache := NewMockCache(ctrl)
				cache.EXPECT().Get(testEmail, "88").Return(rec, true)
				return NewRecordService(cache, NewMockRecordStore(ctrl), l, m)
			},

			expected: rec,
			source:   SourceCache,
		},
		{
			name: "Record fetched from store",

			setupMocks: func() *RecordService {
				cache := NewMockCache(ctrl)
				store := NewMockRecordStore(ctrl)

				cache.EXPECT().Get(testEmail, "88").Return(domain.OrderRecord{}, false)
				store.EXPECT().Get(ctx, testEmail, "88").Return(rec, nil)
				cache.EXPECT().Set(rec)
				return NewRecordService(cache, store, l, m)
			},

			expected: rec,
			source:   SourceStore,
		},
		{
			name: "Cant find record",

			setupMocks: func() *RecordService {
				cache := NewMockCache(ctrl)
				store := NewMockRecordStore(ctrl)

				cache.EXPECT().Get(testEmail, "88").Return(domain.OrderRecord{}, false)
				store.EXPECT().Get(ctx, testEmail, "88").Return(domain.OrderRecord{}, domain.ErrNotFound)
				return NewRecordService(cache, store, l, m)
			},

			wantErr: domain.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := tc.setupMocks()
			got, st, err := s.GetWithStats(ctx, testEmail, "88")

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.Empty(t, got.RowKey)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
			require.Equal(t, tc.source, st.Source)
		})
	}
}

func TestList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	recs := []domain.OrderRecord{record(t, "One"), record(t, "Two")}

	store := NewMockRecordStore(ctrl)
	store.EXPECT().ListPartition(ctx, testEmail).Return(recs, nil)

	s := NewRecordService(NewMockCache(ctrl), store, zap.NewNop(), observability.NewNoop())
	got, err := s.List(ctx, testEmail)

	require.NoError(t, err)
	require.Equal(t, recs, got)
}
