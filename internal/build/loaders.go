package build

import (
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// StaticLoaders maps referenced static files to esbuild loaders: images,
// media and fonts are copied under hashed names, markup is inlined as text.
func StaticLoaders() map[string]api.Loader {
	return map[string]api.Loader{
		// image
		".gif": api.LoaderFile, ".jpg": api.LoaderFile, ".png": api.LoaderFile,
		".apng": api.LoaderFile, ".webp": api.LoaderFile, ".avif": api.LoaderFile,
		// media
		".mp3": api.LoaderFile, ".wav": api.LoaderFile, ".mp4": api.LoaderFile,
		".flac": api.LoaderFile, ".ogg": api.LoaderFile, ".webm": api.LoaderFile,
		// fonts
		".ttf": api.LoaderFile, ".otf": api.LoaderFile, ".eot": api.LoaderFile,
		".woff": api.LoaderFile, ".woff2": api.LoaderFile,
		// markup
		".html": api.LoaderText, ".xml": api.LoaderText, ".svg": api.LoaderText,
	}
}

var targets = map[string]api.Target{
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

// targetOf maps a configured target name to esbuild's. ok is false for
// unknown names.
func targetOf(name string) (api.Target, bool) {
	t, ok := targets[strings.ToLower(name)]
	return t, ok
}
