package retrydetect_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xping/xping-go/retrydetect"
)

func TestRegistry_BuiltinMarkers(t *testing.T) {
	r := retrydetect.NewRegistry()

	assert.True(t, r.IsRetryMarker("nunit", "Retry"))
	assert.True(t, r.IsRetryMarker("NUnit", "Retry"), "framework lookup is case-insensitive")
	assert.True(t, r.IsRetryMarker("xunit", "RetryFact"))
	assert.True(t, r.IsRetryMarker("gotest", "flaky"))

	assert.False(t, r.IsRetryMarker("nunit", "retry"), "marker names are case-sensitive")
	assert.False(t, r.IsRetryMarker("nunit", "Timeout"))
	assert.False(t, r.IsRetryMarker("jest", "retry"), "unknown framework")
}

func TestRegistry_RegisterCustomFramework(t *testing.T) {
	r := retrydetect.NewRegistry()

	assert.False(t, r.IsRetryMarker("customrunner", "FlakyRetry"))
	r.Register("CustomRunner", "FlakyRetry")
	assert.True(t, r.IsRetryMarker("customrunner", "FlakyRetry"))

	// Existing frameworks can be extended too.
	r.Register("nunit", "RetryOnFailure")
	assert.True(t, r.IsRetryMarker("nunit", "RetryOnFailure"))
	assert.True(t, r.IsRetryMarker("nunit", "Retry"), "built-ins survive extension")
}

func TestRegistry_Detect(t *testing.T) {
	r := retrydetect.NewRegistry()

	tests := []struct {
		name        string
		framework   string
		annotations map[string]string
		wantMax     int
		wantOK      bool
	}{
		{"numeric ceiling", "nunit", map[string]string{"Retry": "3"}, 3, true},
		{"padded value", "nunit", map[string]string{"Retry": " 5 "}, 5, true},
		{"empty value means unknown ceiling", "nunit", map[string]string{"Retry": ""}, 0, true},
		{"non-numeric value means unknown ceiling", "xunit", map[string]string{"RetryFact": "true"}, 0, true},
		{"zero is not a ceiling", "nunit", map[string]string{"Retry": "0"}, 0, true},
		{"no retry annotation", "nunit", map[string]string{"Category": "smoke"}, 0, false},
		{"unknown framework", "jest", map[string]string{"retry": "3"}, 0, false},
		{"nil annotations", "nunit", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			max, ok := r.Detect(tt.framework, tt.annotations)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMax, max)
		})
	}
}

func TestRegistry_ConcurrentRegisterAndDetect(t *testing.T) {
	r := retrydetect.NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Register("customrunner", fmt.Sprintf("Marker%d", i))
		}(i)
		go func() {
			defer wg.Done()
			r.Detect("nunit", map[string]string{"Retry": "2"})
		}()
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		assert.True(t, r.IsRetryMarker("customrunner", fmt.Sprintf("Marker%d", i)))
	}
}

func TestDefaultRegistryFunctions(t *testing.T) {
	max, ok := retrydetect.Detect("mstest", map[string]string{"TestRetry": "4"})
	assert.True(t, ok)
	assert.Equal(t, 4, max)

	retrydetect.Register("defaultpkgtest", "CustomMarker")
	_, ok = retrydetect.Detect("defaultpkgtest", map[string]string{"CustomMarker": "2"})
	assert.True(t, ok)
}
