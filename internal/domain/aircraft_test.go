package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAltitude(t *testing.T) {
	tests := []struct {
		raw  string
		want Altitude
	}{
		{`35000`, AltitudeFeet(35000)},
		{`-50`, AltitudeFeet(-50)},
		{`"ground"`, AltitudeGround()},
		{`"GROUND"`, AltitudeGround()},
		{`null`, Altitude{}},
		{``, Altitude{}},
		{`"n/a"`, Altitude{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAltitude(json.RawMessage(tt.raw)), "raw=%s", tt.raw)
	}
}

func TestAltitudeJSON(t *testing.T) {
	type wrapper struct {
		Alt Altitude `json:"alt"`
	}

	for _, tt := range []struct {
		alt  Altitude
		want string
	}{
		{AltitudeFeet(12000), `{"alt":12000}`},
		{AltitudeGround(), `{"alt":"ground"}`},
		{Altitude{}, `{"alt":null}`},
	} {
		b, err := json.Marshal(wrapper{Alt: tt.alt})
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, string(b))

		var back wrapper
		require.NoError(t, json.Unmarshal(b, &back))
		assert.Equal(t, tt.alt, back.Alt)
	}
}

func TestIdentityFor(t *testing.T) {
	id, hex := IdentityFor(" 3c6444 ")
	assert.Equal(t, "3c6444", id)
	assert.Equal(t, "3c6444", hex)

	id, hex = IdentityFor("")
	assert.Equal(t, id, hex)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestWithPosition(t *testing.T) {
	in := []Aircraft{
		{Hex: "a", Lat: ptr(1), Lon: ptr(2)},
		{Hex: "b", Lat: ptr(1)},
		{Hex: "c", Lon: ptr(2)},
		{Hex: "d", Lat: ptr(0), Lon: ptr(0)},
	}

	out := WithPosition(in)

	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Hex)
	assert.Equal(t, "d", out[1].Hex, "zero coordinates are still coordinates")
}

func TestFeed(t *testing.T) {
	captured := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := Feed{
		Status:     200,
		CapturedAt: captured,
		Aircraft:   []Aircraft{{IsMilitary: true}, {}, {IsMilitary: true}},
	}

	assert.True(t, f.OK())
	assert.Equal(t, captured.UnixMilli(), f.NowMillis())
	assert.Equal(t, 2, f.MilitaryCount())

	now := int64(1700000000000)
	f.UpstreamNow = &now
	assert.Equal(t, now, f.NowMillis())

	f.Status = 502
	assert.False(t, f.OK())
}

func TestTrimOrEmpty(t *testing.T) {
	s := "  RCH123 "
	assert.Equal(t, "RCH123", TrimOrEmpty(&s))
	assert.Equal(t, "", TrimOrEmpty(nil))
}

func TestSetClock(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, fixed, Now())
}
