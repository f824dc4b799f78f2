package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/desertthunder/plcopy/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const consoleURL = "https://console.cloud.google.com/apis/credentials"

const missingSecretsMessage = `OAuth 2.0 is not configured.

Download an OAuth client ID of type "Desktop app" from

   %s

and save it as

   %s

or point --secrets-file at it.`

// LoadClientSecrets reads a Google client-secret JSON file and returns an [oauth2.Config] for scopes.
//
// A missing or malformed file is reported as [shared.ErrConfiguration] naming the absolute path.
func LoadClientSecrets(path string, scopes []string) (*oauth2.Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: "+missingSecretsMessage, shared.ErrConfiguration, consoleURL, abs)
		}
		return nil, fmt.Errorf("%w: failed to read client secrets %s: %v", shared.ErrConfiguration, abs, err)
	}

	config, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed client secrets %s: %v", shared.ErrConfiguration, abs, err)
	}
	return config, nil
}
