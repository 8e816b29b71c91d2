package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/solar-forecast-service/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(now))
	defer domain.SetClock(nil)

	m := domain.Measurement{
		Time:       time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC),
		Features:   domain.Features{AirTemperature: 18.5, CloudOpacity: 12, GHI: 640},
		Production: [domain.NumLocations]float64{41.2, 16.8, 70.1},
	}

	msg, err := serializeToMessage(m)
	require.NoError(t, err)

	assert.Equal(t, []byte("02-05-25 09:00"), msg.Key)
	assert.Contains(t, string(msg.Value), `"ghi":640`)

	var decoded domain.Measurement
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, m, decoded)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "source", msg.Headers[0].Key)
	assert.Equal(t, []byte("add-form"), msg.Headers[0].Value)
	assert.Equal(t, "published_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}
