package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moolen/meshprobe/internal/browser"
	"github.com/moolen/meshprobe/internal/console"
	"github.com/moolen/meshprobe/internal/fixture"
	"github.com/moolen/meshprobe/tests/e2e/helpers"
)

const (
	fixtureTimeout   = 2 * time.Minute
	namespaceTimeout = 3 * time.Minute
)

type MeshStage struct {
	t       *testing.T
	require *require.Assertions
	assert  *assert.Assertions

	env     *helpers.ConsoleEnv
	session *browser.Session

	namespace string
	name      string
	podName   string
}

func NewMeshStage(t *testing.T) (*MeshStage, *MeshStage, *MeshStage) {
	s := &MeshStage{
		t:       t,
		require: require.New(t),
		assert:  assert.New(t),
	}
	return s, s, s
}

func (s *MeshStage) and() *MeshStage {
	return s
}

func (s *MeshStage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(s.t.Context(), fixtureTimeout)
}

func (s *MeshStage) a_console_environment() *MeshStage {
	s.env = helpers.SetupConsoleEnv(s.t)
	s.require.NoError(browser.EnsureInstalled(), "failed to install playwright browsers")
	return s
}

func (s *MeshStage) a_resource_name(prefix string) *MeshStage {
	s.name = fixture.RandomName(prefix)
	return s
}

func (s *MeshStage) a_logged_in_browser() *MeshStage {
	session, err := browser.NewSession(browser.OptionsFromConfig(s.env.Config.Browser))
	s.require.NoError(err, "failed to start browser")
	s.session = session
	s.t.Cleanup(func() {
		if s.t.Failed() {
			path := helpers.ArtifactPath(s.env.Config.Browser.ArtifactsDir, s.t.Name())
			if err := session.Screenshot(path); err != nil {
				s.t.Logf("Warning: failed to capture screenshot: %v", err)
			} else {
				s.t.Logf("Screenshot saved to %s", path)
			}
		}
		if err := session.Close(); err != nil {
			s.t.Logf("Warning: failed to close browser: %v", err)
		}
	})

	s.require.NoError(console.Login(s.session, s.env.Navigator, s.env.Config.Console.Kubeconfig), "failed to log in")
	return s
}

func (s *MeshStage) a_fresh_namespace() *MeshStage {
	ctx, cancel := s.ctx()
	defer cancel()

	s.namespace = fixture.NamespaceName()
	s.require.NoError(s.env.Fixture.CreateNamespace(ctx, s.namespace))
	s.t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), namespaceTimeout)
		defer cancel()
		if err := s.env.Fixture.DeleteNamespace(ctx, s.namespace); err != nil {
			s.t.Logf("Warning: failed to delete namespace: %v", err)
		}
	})
	return s
}

func (s *MeshStage) an_authorization_policy_exists() *MeshStage {
	ctx, cancel := s.ctx()
	defer cancel()

	s.require.NoError(s.env.Fixture.CreateAuthorizationPolicy(ctx, s.namespace, s.name))
	return s
}

func (s *MeshStage) a_sleep_pod_exists(prefix string) *MeshStage {
	ctx, cancel := s.ctx()
	defer cancel()

	s.podName = fixture.RandomName(prefix)
	_, err := s.env.Fixture.CreateHttpbinSleepPod(ctx, s.podName, s.namespace)
	s.require.NoError(err)
	return s
}

func (s *MeshStage) a_service_exists(name string) *MeshStage {
	ctx, cancel := s.ctx()
	defer cancel()

	_, err := s.env.Fixture.CreateService(ctx, name, s.namespace)
	s.require.NoError(err)
	return s
}

func (s *MeshStage) resource_list_is_opened(kind string) *MeshStage {
	s.require.NoError(s.env.Navigator.Open(s.session, kind, s.namespace, ""))
	return s
}

func (s *MeshStage) resource_details_are_opened(kind string) *MeshStage {
	s.require.NoError(s.env.Navigator.Open(s.session, kind, s.namespace, s.name))
	return s
}

func (s *MeshStage) create_dialog_is_opened() *MeshStage {
	s.require.NoError(s.session.ClickCreateButton())
	return s
}

func (s *MeshStage) resource_is_created() *MeshStage {
	s.require.NoError(s.session.ClickCreateButton())
	return s
}

func (s *MeshStage) edit_tab_is_opened() *MeshStage {
	s.require.NoError(s.session.ClickEditTab())
	return s
}

func (s *MeshStage) changes_are_saved() *MeshStage {
	s.require.NoError(s.session.ClickSaveButton())
	s.require.NoError(s.session.ClickViewTab())
	return s
}

func (s *MeshStage) filled(fill func(d console.Driver) error) *MeshStage {
	s.require.NoError(fill(s.session))
	return s
}

func (s *MeshStage) text_is_clicked(text string) *MeshStage {
	s.require.NoError(s.session.ClickText(text))
	return s
}

func (s *MeshStage) texts_are_visible(texts ...string) *MeshStage {
	for _, text := range texts {
		s.require.NoError(s.session.ExpectVisibleText(text))
	}
	return s
}

func (s *MeshStage) texts_are_absent(texts ...string) *MeshStage {
	for _, text := range texts {
		s.require.NoError(s.session.ExpectNoText(text))
	}
	return s
}

func (s *MeshStage) content_contains(selector string, texts ...string) *MeshStage {
	s.require.NoError(s.session.ExpectTextIn(selector, texts...))
	return s
}

func (s *MeshStage) resource_name_is_visible() *MeshStage {
	return s.texts_are_visible(s.name)
}

func (s *MeshStage) resource_is_listed(resource string) *MeshStage {
	s.require.NoError(s.session.InspectList(resource, s.name))
	return s
}
