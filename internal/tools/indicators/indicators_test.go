package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	t.Run("trailing mean of window", func(t *testing.T) {
		closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

		v, ok := SMA(closes, 5)
		require.True(t, ok)
		// Mean of 6..10
		assert.InDelta(t, 8.0, v, 1e-9)
	})

	t.Run("window equals series length", func(t *testing.T) {
		closes := []float64{2, 4, 6}

		v, ok := SMA(closes, 3)
		require.True(t, ok)
		assert.InDelta(t, 4.0, v, 1e-9)
	})

	t.Run("long window over ramp", func(t *testing.T) {
		closes := make([]float64, 250)
		for i := range closes {
			closes[i] = 100 + 0.1*float64(i)
		}

		v, ok := SMA(closes, 200)
		require.True(t, ok)
		// Mean of indices 50..249 is index 149.5
		assert.InDelta(t, 114.95, v, 1e-9)
	})

	t.Run("not enough history", func(t *testing.T) {
		_, ok := SMA([]float64{1, 2, 3}, 5)
		assert.False(t, ok)
	})

	t.Run("empty series", func(t *testing.T) {
		_, ok := SMA(nil, 5)
		assert.False(t, ok)
	})
}

func TestRSI(t *testing.T) {
	t.Run("known series", func(t *testing.T) {
		closes := []float64{
			44.00, 44.34, 44.09, 44.15, 43.61,
			44.33, 44.83, 45.10, 45.42, 45.84,
			46.08, 45.89, 46.03, 45.61, 46.28,
		}

		v, ok := RSI(closes, 14)
		require.True(t, ok)
		// Gains sum 3.68, losses sum 1.40 over the 14 deltas:
		// RS = 3.68/1.40, RSI = 100 - 100/(1+RS) = 9200/127
		assert.InDelta(t, 72.44094488188976, v, 1e-6)
	})

	t.Run("lossless window pins at 100", func(t *testing.T) {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 50 + float64(i)
		}

		v, ok := RSI(closes, 14)
		require.True(t, ok)
		assert.InDelta(t, 100.0, v, 1e-9)
	})

	t.Run("gainless window pins at 0", func(t *testing.T) {
		closes := make([]float64, 20)
		for i := range closes {
			closes[i] = 50 - float64(i)
		}

		v, ok := RSI(closes, 14)
		require.True(t, ok)
		assert.InDelta(t, 0.0, v, 1e-9)
	})

	t.Run("needs a full delta window", func(t *testing.T) {
		closes := make([]float64, 14)
		for i := range closes {
			closes[i] = float64(i)
		}

		_, ok := RSI(closes, 14)
		assert.False(t, ok)
	})
}

func TestMACD(t *testing.T) {
	t.Run("hand computed recursion", func(t *testing.T) {
		// fast k=2/3, slow k=1/2, signal k=2/3:
		//   fast EMA:  1, 5/3, 23/9
		//   slow EMA:  1, 3/2, 9/4
		//   MACD:      0, 1/6, 11/36
		//   signal:    0, 1/9, 13/54
		macd, signal, hist, ok := MACD([]float64{1, 2, 3}, 2, 3, 2)
		require.True(t, ok)
		assert.InDelta(t, 11.0/36.0, macd, 1e-9)
		assert.InDelta(t, 13.0/54.0, signal, 1e-9)
		assert.InDelta(t, 7.0/108.0, hist, 1e-9)
	})

	t.Run("single close collapses to zero", func(t *testing.T) {
		macd, signal, hist, ok := MACD([]float64{42}, 12, 26, 9)
		require.True(t, ok)
		assert.Zero(t, macd)
		assert.Zero(t, signal)
		assert.Zero(t, hist)
	})

	t.Run("uptrend keeps MACD positive", func(t *testing.T) {
		closes := make([]float64, 60)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}

		macd, _, _, ok := MACD(closes, 12, 26, 9)
		require.True(t, ok)
		assert.Greater(t, macd, 0.0)
	})

	t.Run("empty series", func(t *testing.T) {
		_, _, _, ok := MACD(nil, 12, 26, 9)
		assert.False(t, ok)
	})
}

func TestSnapshot(t *testing.T) {
	t.Run("full history fills every indicator", func(t *testing.T) {
		closes := make([]float64, 250)
		for i := range closes {
			closes[i] = 100 + 0.1*float64(i)
		}

		snap := Snapshot(closes)
		require.NotNil(t, snap.SMA50)
		require.NotNil(t, snap.SMA200)
		require.NotNil(t, snap.RSI)
		require.NotNil(t, snap.MACD)
		require.NotNil(t, snap.MACDSignal)
		require.NotNil(t, snap.MACDHist)

		assert.InDelta(t, 122.45, *snap.SMA50, 1e-9)
		assert.InDelta(t, 114.95, *snap.SMA200, 1e-9)
		assert.InDelta(t, 100.0, *snap.RSI, 1e-9)
	})

	t.Run("short history leaves long windows unset", func(t *testing.T) {
		closes := make([]float64, 60)
		for i := range closes {
			closes[i] = 100 + float64(i%7)
		}

		snap := Snapshot(closes)
		assert.NotNil(t, snap.SMA50)
		assert.Nil(t, snap.SMA200)
		assert.NotNil(t, snap.RSI)
		assert.NotNil(t, snap.MACD)
		assert.NotNil(t, snap.MACDSignal)
		assert.NotNil(t, snap.MACDHist)
	})

	t.Run("empty history leaves everything unset", func(t *testing.T) {
		snap := Snapshot(nil)
		assert.Nil(t, snap.SMA50)
		assert.Nil(t, snap.SMA200)
		assert.Nil(t, snap.RSI)
		assert.Nil(t, snap.MACD)
		assert.Nil(t, snap.MACDSignal)
		assert.Nil(t, snap.MACDHist)
	})
}
