// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

//go:build unit

package cloudconnector

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
	"github.com/platform-engineering-labs/skyfed/pkg/plugin"
)

func testConfig() *model.Config {
	return &model.Config{
		Provider: model.ProviderConfig{ID: localID, DefaultCloud: "cloudB"},
		Clouds:   []model.CloudConfig{{Name: "cloudA"}, {Name: "cloudB"}, {Name: "cloudC"}},
	}
}

func countingInstantiator(count *atomic.Int32) instantiatorFunc {
	return func(model.CloudConfig) (*plugin.Set, error) {
		count.Add(1)
		return newFakeCloud().set(), nil
	}
}

func TestFactory_LocalConnectorIsCachedPerCloud(t *testing.T) {
	var builds atomic.Int32
	f := NewFactory(testConfig(), countingInstantiator(&builds), NewAuditor(nil), nil)

	a1, err := f.GetConnector(localID, "cloudA")
	require.NoError(t, err)
	a2, err := f.GetConnector(localID, "cloudA")
	require.NoError(t, err)
	b, err := f.GetConnector(localID, "cloudB")
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.EqualValues(t, 2, builds.Load())
}

func TestFactory_ConcurrentFirstCallsBuildOnce(t *testing.T) {
	var builds atomic.Int32
	f := NewFactory(testConfig(), countingInstantiator(&builds), NewAuditor(nil), nil)

	connectors := make([]CloudConnector, 16)
	var wg conc.WaitGroup
	for i := range connectors {
		wg.Go(func() {
			c, err := f.GetConnector(localID, "cloudA")
			assert.NoError(t, err)
			connectors[i] = c
		})
	}
	wg.Wait()

	assert.EqualValues(t, 1, builds.Load())
	for _, c := range connectors[1:] {
		assert.Same(t, connectors[0], c)
	}
}

func TestFactory_EmptyCloudNameIsDefault(t *testing.T) {
	var builds atomic.Int32
	f := NewFactory(testConfig(), countingInstantiator(&builds), NewAuditor(nil), nil)

	c, err := f.GetConnector(localID, "")
	require.NoError(t, err)
	assert.Equal(t, "cloudB", c.(*LocalCloudConnector).CloudName())

	named, err := f.GetConnector(localID, "cloudB")
	require.NoError(t, err)
	assert.Same(t, c, named)
}

func TestFactory_UnknownCloud(t *testing.T) {
	var builds atomic.Int32
	f := NewFactory(testConfig(), countingInstantiator(&builds), NewAuditor(nil), nil)

	_, err := f.GetConnector(localID, "nowhere")
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
	assert.Zero(t, builds.Load())
}

func TestFactory_BuildFailureIsNotCached(t *testing.T) {
	var attempts atomic.Int32
	f := NewFactory(testConfig(), instantiatorFunc(func(model.CloudConfig) (*plugin.Set, error) {
		if attempts.Add(1) == 1 {
			return nil, errors.New("driver missing")
		}
		return newFakeCloud().set(), nil
	}), NewAuditor(nil), nil)

	_, err := f.GetConnector(localID, "cloudA")
	assert.ErrorIs(t, err, model.ErrUnexpected)

	c, err := f.GetConnector(localID, "cloudA")
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.EqualValues(t, 2, attempts.Load())
}

func TestFactory_RemoteConnectorIsFreshEveryCall(t *testing.T) {
	var builds atomic.Int32
	f := NewFactory(testConfig(), countingInstantiator(&builds), NewAuditor(nil), senderFunc(nil))

	r1, err := f.GetConnector(remoteID, "cloudR")
	require.NoError(t, err)
	r2, err := f.GetConnector(remoteID, "cloudR")
	require.NoError(t, err)

	require.IsType(t, &RemoteCloudConnector{}, r1)
	assert.NotSame(t, r1, r2)
	assert.Equal(t, remoteID, r1.(*RemoteCloudConnector).Provider())
	assert.Equal(t, "cloudR", r1.(*RemoteCloudConnector).CloudName())
	assert.Zero(t, builds.Load())
}

func TestFactory_CloudNamesDefaultFirst(t *testing.T) {
	f := NewFactory(testConfig(), countingInstantiator(new(atomic.Int32)), NewAuditor(nil), nil)

	assert.Equal(t, []string{"cloudB", "cloudA", "cloudC"}, f.CloudNames())
	assert.Equal(t, localID, f.LocalID())
}

func TestFactory_PropertyRoutingIsDeterministic(t *testing.T) {
	f := NewFactory(testConfig(), countingInstantiator(new(atomic.Int32)), NewAuditor(nil), senderFunc(nil))

	rapid.Check(t, func(t *rapid.T) {
		provider := rapid.SampledFrom([]string{localID, remoteID, "provider-x", ""}).Draw(t, "provider")
		cloud := rapid.SampledFrom([]string{"cloudA", "cloudB", "cloudC", ""}).Draw(t, "cloud")

		c, err := f.GetConnector(provider, cloud)
		if err != nil {
			t.Fatalf("GetConnector(%q, %q): %v", provider, cloud, err)
		}

		switch conn := c.(type) {
		case *LocalCloudConnector:
			if provider != localID {
				t.Fatalf("provider %q routed locally", provider)
			}
			want := cloud
			if want == "" {
				want = "cloudB"
			}
			if conn.CloudName() != want {
				t.Fatalf("local cloud %q, want %q", conn.CloudName(), want)
			}
		case *RemoteCloudConnector:
			if provider == localID {
				t.Fatal("local provider routed remotely")
			}
			if conn.Provider() != provider || conn.CloudName() != cloud {
				t.Fatalf("remote target %s/%s, want %s/%s", conn.Provider(), conn.CloudName(), provider, cloud)
			}
		default:
			t.Fatalf("unexpected connector %T", c)
		}
	})
}
