package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siemcac/siemcac/internal/application/dto"
	apperrors "github.com/siemcac/siemcac/internal/application/errors"
	"github.com/siemcac/siemcac/internal/domain/entities"
	"github.com/siemcac/siemcac/internal/domain/services"
	"github.com/siemcac/siemcac/internal/domain/values"
)

type memoryStore map[string]*entities.Template

func (s memoryStore) Get(_ context.Context, ref string) (*entities.Template, error) {
	tmpl, ok := s[ref]
	if !ok {
		return nil, &entities.TemplateNotFoundError{Ref: ref}
	}
	return tmpl, nil
}

func storeWith(templates ...*entities.Template) memoryStore {
	s := make(memoryStore, len(templates))
	for _, t := range templates {
		s[t.Name] = t
	}
	return s
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// baseAndProd is a two-level chain: the base declares a repo and a
// routing policy driven by the repo_name variable, the child swaps the
// variable and adds a second repo.
func baseAndProd() memoryStore {
	base := &entities.Template{
		Name:    "base",
		Version: "1.0.0",
		Variables: map[string]values.Value{
			"repo_name": values.Text("logs-default"),
		},
		Spec: map[string][]entities.Resource{
			"repos": {
				{"name": values.Text("${repo_name}")},
			},
			"routing_policies": {
				{
					"policy_name": values.Text("default"),
					"catch_all":   values.Text("${repo_name}"),
					"routing_criteria": values.List(
						values.Map(map[string]values.Value{
							"_id":  values.Text("crit-1"),
							"repo": values.Text("${repo_name}"),
						}),
					),
				},
			},
		},
	}
	prod := &entities.Template{
		Name:    "prod",
		Extends: "base",
		Variables: map[string]values.Value{
			"repo_name": values.Text("logs-prod"),
		},
		Spec: map[string][]entities.Resource{
			"repos": {
				{"name": values.Text("audit")},
			},
		},
	}
	return storeWith(base, prod)
}

func Test_ResolveUseCase_FullPipeline(t *testing.T) {
	t.Parallel()

	uc := NewResolveUseCase(baseAndProd(), services.MapEnv{}, testLogger())

	resp, err := uc.Execute(context.Background(), dto.ResolveRequest{TemplateRef: "prod"})
	require.NoError(t, err)

	assert.Equal(t, []string{"base", "prod"}, resp.Configuration.Chain)
	assert.False(t, resp.Result.HasErrors())

	repos := resp.Configuration.Resources["repos"]
	require.Len(t, repos, 2)
	assert.Equal(t, "logs-prod", repos[0]["name"].Text(), "leaf variable wins")
	assert.Equal(t, "audit", repos[1]["name"].Text())

	policy := resp.Configuration.Resource("routing_policies", "default")
	require.NotNil(t, policy)
	assert.Equal(t, "logs-prod", policy["catch_all"].Text())

	criteria := policy["routing_criteria"].List()
	require.Len(t, criteria, 1)
	_, hasID := criteria[0].Get("_id")
	assert.False(t, hasID, "bookkeeping keys are stripped from the output")

	require.NotEmpty(t, resp.Result.DeploymentOrder)
	assert.Equal(t, "repos", resp.Result.DeploymentOrder[0])
}

func Test_ResolveUseCase_RequestVariablesOverride(t *testing.T) {
	t.Parallel()

	uc := NewResolveUseCase(baseAndProd(), services.MapEnv{}, testLogger())

	resp, err := uc.Execute(context.Background(), dto.ResolveRequest{
		TemplateRef: "prod",
		Variables:   map[string]string{"repo_name": "logs-cli"},
	})
	require.NoError(t, err)

	repos := resp.Configuration.Resources["repos"]
	require.NotEmpty(t, repos)
	assert.Equal(t, "logs-cli", repos[0]["name"].Text())
}

func Test_ResolveUseCase_DanglingReferenceBlocksDeploymentOrder(t *testing.T) {
	t.Parallel()

	store := storeWith(&entities.Template{
		Name: "broken",
		Spec: map[string][]entities.Resource{
			"routing_policies": {
				{
					"policy_name":      values.Text("rp"),
					"catch_all":        values.Text("missing-repo"),
					"routing_criteria": values.List(),
				},
			},
		},
	})
	uc := NewResolveUseCase(store, services.MapEnv{}, testLogger())

	resp, err := uc.Execute(context.Background(), dto.ResolveRequest{TemplateRef: "broken"})
	require.NoError(t, err, "validation findings are diagnostics, not failures")

	require.True(t, resp.Result.HasErrors())
	assert.Empty(t, resp.Result.DeploymentOrder, "an invalid document has no deployment order")
	assert.NotNil(t, resp.Configuration, "the document is still returned for display")
}

func Test_ResolveUseCase_UnresolvedPlaceholderIsWarning(t *testing.T) {
	t.Parallel()

	store := storeWith(&entities.Template{
		Name: "loose",
		Spec: map[string][]entities.Resource{
			"repos": {
				{"name": values.Text("logs"), "description": values.Text("${undefined_var}")},
			},
		},
	})
	uc := NewResolveUseCase(store, services.MapEnv{}, testLogger())

	resp, err := uc.Execute(context.Background(), dto.ResolveRequest{TemplateRef: "loose"})
	require.NoError(t, err)

	assert.False(t, resp.Result.HasErrors())
	require.NotEmpty(t, resp.Result.Warnings())
	assert.Equal(t, "${undefined_var}", resp.Configuration.Resources["repos"][0]["description"].Text())
	assert.NotEmpty(t, resp.Result.DeploymentOrder, "warnings do not block deployment")
}

func Test_ResolveUseCase_MissingTemplateFails(t *testing.T) {
	t.Parallel()

	uc := NewResolveUseCase(memoryStore{}, services.MapEnv{}, testLogger())

	_, err := uc.Execute(context.Background(), dto.ResolveRequest{TemplateRef: "ghost"})
	require.Error(t, err)

	var resErr *apperrors.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "ghost", resErr.Ref)

	var notFound *entities.TemplateNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
