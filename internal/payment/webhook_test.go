package payment

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

func TestConstructEvent_ValidSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","payment_intent":"pi_1"}}}`)
	header := SignPayload(payload, testSecret, time.Now())

	event, err := ConstructEvent(payload, header, testSecret)

	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventCheckoutCompleted, event.Type)

	var session SessionObject
	require.NoError(t, json.Unmarshal(event.Data.Object, &session))
	assert.Equal(t, "pi_1", session.PaymentIntent)
}

func TestConstructEvent_WrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"charge.succeeded"}`)
	header := SignPayload(payload, "whsec_other", time.Now())

	_, err := ConstructEvent(payload, header, testSecret)

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestConstructEvent_TamperedPayload(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"charge.succeeded"}`)
	header := SignPayload(payload, testSecret, time.Now())

	tampered := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	_, err := ConstructEvent(tampered, header, testSecret)

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestConstructEvent_StaleTimestamp(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"charge.succeeded"}`)
	header := SignPayload(payload, testSecret, time.Now().Add(-10*time.Minute))

	_, err := ConstructEvent(payload, header, testSecret)

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestConstructEvent_MalformedHeader(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)

	for _, header := range []string{"", "garbage", "t=abc,v1=00", "v1=deadbeef", "t=123"} {
		_, err := ConstructEvent(payload, header, testSecret)
		assert.ErrorIs(t, err, ErrInvalidSignature, "header %q", header)
	}
}
