package config

import (
	_ "github.com/any-hub/asset-hub/internal/media/script"
	_ "github.com/any-hub/asset-hub/internal/media/style"
)
