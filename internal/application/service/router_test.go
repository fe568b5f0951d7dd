package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cubr/queue/internal/domain/event"
)

func TestRouterDispatchesRenderSubmitted(t *testing.T) {
	svc, renders, _, _ := newTestService()
	router := NewRouter(svc)

	payload, err := json.Marshal(event.RenderSubmitted{UserID: "u1", ID: "r1", FileID: "f1", FileVersion: 1, FrameStart: 1, FrameEnd: 1, Step: 1, Slices: 1})
	require.NoError(t, err)

	require.NoError(t, router.Route(context.Background(), event.KindRenderSubmitted, event.Header{}, payload))

	r, err := renders.Load(context.Background(), "r1")
	require.NoError(t, err)
	require.NotNil(t, r, "render not created via router dispatch")
}

func TestRouterUnknownKindIsSilentNoOp(t *testing.T) {
	svc, _, _, _ := newTestService()
	router := NewRouter(svc)

	require.NoError(t, router.Route(context.Background(), event.Kind("SomethingFromTheFuture"), event.Header{}, []byte(`{}`)), "unknown kind must not error")
}

func TestRouterMalformedPayloadErrors(t *testing.T) {
	svc, _, _, _ := newTestService()
	router := NewRouter(svc)

	require.Error(t, router.Route(context.Background(), event.KindRenderSubmitted, event.Header{}, []byte(`not json`)), "expected decode error for malformed payload")
}
