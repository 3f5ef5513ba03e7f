package build

import (
	"github.com/evanw/esbuild/pkg/api"

	"github.com/conneroisu/sitepack/internal/errors"
	"github.com/conneroisu/sitepack/internal/resolve"
)

// PluginName is the name esbuild reports for hook failures
const PluginName = "sitepack"

// NewPlugin adapts a hook pipeline into a single esbuild plugin. Every
// request is offered to the pipeline; a pass falls through to esbuild.
func NewPlugin(pipeline *resolve.Pipeline) api.Plugin {
	return api.Plugin{
		Name: PluginName,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: "."},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					res, err := pipeline.Resolve(resolve.Request{
						Path:       args.Path,
						Kind:       kindOf(args.Kind),
						Importer:   args.Importer,
						ResolveDir: args.ResolveDir,
						Namespace:  args.Namespace,
						PluginData: args.PluginData,
					})
					if err != nil || res == nil {
						return api.OnResolveResult{}, err
					}
					return api.OnResolveResult{
						Path:       res.Path,
						Namespace:  res.Namespace,
						PluginData: res.PluginData,
						Warnings:   toMessages(res.Warnings),
					}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: "."},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					res, err := pipeline.Load(resolve.LoadRequest{
						Path:       args.Path,
						Namespace:  args.Namespace,
						PluginData: args.PluginData,
					})
					if err != nil || res == nil {
						return api.OnLoadResult{}, err
					}
					return toLoadResult(res), nil
				})
		},
	}
}

func toLoadResult(res *resolve.LoadResult) api.OnLoadResult {
	out := api.OnLoadResult{
		Loader:   loaderOf(res.Loader),
		Warnings: toMessages(res.Warnings),
		Errors:   toMessages(res.Errors),
	}
	if res.Contents != nil || len(res.Errors) == 0 {
		contents := string(res.Contents)
		out.Contents = &contents
	}
	out.ResolveDir = res.ResolveDir
	return out
}

func kindOf(kind api.ResolveKind) resolve.Kind {
	switch kind {
	case api.ResolveEntryPoint:
		return resolve.KindEntryPoint
	case api.ResolveJSImportStatement:
		return resolve.KindImportStatement
	case api.ResolveJSRequireCall:
		return resolve.KindRequireCall
	case api.ResolveJSDynamicImport:
		return resolve.KindDynamicImport
	case api.ResolveJSRequireResolve:
		return resolve.KindRequireResolve
	case api.ResolveCSSImportRule:
		return resolve.KindImportRule
	case api.ResolveCSSComposesFrom:
		return resolve.KindComposesFrom
	case api.ResolveCSSURLToken:
		return resolve.KindURLToken
	default:
		return resolve.KindImportStatement
	}
}

func loaderOf(loader resolve.Loader) api.Loader {
	switch loader {
	case resolve.LoaderFile:
		return api.LoaderFile
	case resolve.LoaderText:
		return api.LoaderText
	case resolve.LoaderCSS:
		return api.LoaderCSS
	case resolve.LoaderJS:
		return api.LoaderJS
	case resolve.LoaderBinary:
		return api.LoaderBinary
	default:
		return api.LoaderNone
	}
}

func toMessages(diags []errors.Diagnostic) []api.Message {
	if len(diags) == 0 {
		return nil
	}
	messages := make([]api.Message, 0, len(diags))
	for _, d := range diags {
		msg := api.Message{Text: d.Message}
		if d.Location != nil {
			msg.Location = &api.Location{
				File:      d.Location.File,
				Namespace: d.Location.Namespace,
				Line:      d.Location.Line,
				Column:    d.Location.Column,
				Length:    d.Location.Length,
				LineText:  d.Location.LineText,
			}
		}
		messages = append(messages, msg)
	}
	return messages
}
