package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordFetch(t *testing.T) {
	before := testutil.ToFloat64(SourceFetchTotal.WithLabelValues("m-test", "feed", "error"))
	RecordFetch("m-test", "feed", errors.New("down"))
	RecordFetch("m-test", "feed", nil)

	assert.Equal(t, before+1, testutil.ToFloat64(SourceFetchTotal.WithLabelValues("m-test", "feed", "error")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(SourceFetchTotal.WithLabelValues("m-test", "feed", "ok")), 1.0)
}

func TestRecordInsertedIgnoresZero(t *testing.T) {
	RecordInserted("m-zero", 0)
	RecordInserted("m-three", 3)

	assert.Equal(t, 0.0, testutil.ToFloat64(ArticlesInsertedTotal.WithLabelValues("m-zero")))
	assert.Equal(t, 3.0, testutil.ToFloat64(ArticlesInsertedTotal.WithLabelValues("m-three")))
}
