package cli

import (
	"context"

	"github.com/turtacn/TextCoder/internal/application/batch"
	"github.com/turtacn/TextCoder/internal/application/coding"
	"github.com/turtacn/TextCoder/internal/application/presets"
	"github.com/turtacn/TextCoder/internal/domain/lexicon"
	"github.com/turtacn/TextCoder/internal/infrastructure/storage/minio"
	"github.com/turtacn/TextCoder/pkg/errors"
	codingtypes "github.com/turtacn/TextCoder/pkg/types/coding"
)

// localDeps are the in-process collaborators of the offline commands,
// built on first use from the loaded config.
type localDeps struct {
	registry *presets.Registry
	service  *coding.Service
	extender *presets.Extender
}

func (c *CLIContext) engineVersion() string {
	if c.Config != nil && c.Config.Engine.Version != "" {
		return c.Config.Engine.Version
	}
	return codingtypes.EngineVersion
}

func (c *CLIContext) local() (*localDeps, error) {
	if c.deps != nil {
		return c.deps, nil
	}
	eng := c.Config.Engine
	base, err := lexicon.Load(eng.CategoriesPath, eng.ExceptionsPath)
	if err != nil {
		return nil, err
	}
	spelling, err := lexicon.LoadSpellingMap(eng.SpellingMapPath)
	if err != nil {
		return nil, err
	}

	reg := presets.NewRegistry(c.Config.Presets.Dir, c.Logger.Named("presets"))
	svc := coding.NewService(base, reg,
		coding.WithEngineVersion(eng.Version),
		coding.WithLogger(c.Logger.Named("coding")))

	c.deps = &localDeps{
		registry: reg,
		service:  svc,
		extender: presets.NewExtender(reg, spelling),
	}
	return c.deps, nil
}

// uploader connects to the export bucket configured under minio.
func (c *CLIContext) uploader(ctx context.Context) (batch.Uploader, error) {
	mc := c.Config.MinIO
	if !mc.Enabled {
		return nil, errors.New(errors.ErrCodeConfigInvalid, "upload requested but minio is disabled in the config")
	}
	cl, err := minio.NewClient(ctx, minio.Config{
		Endpoint:      mc.Endpoint,
		AccessKey:     mc.AccessKey,
		SecretKey:     mc.SecretKey,
		UseSSL:        mc.UseSSL,
		Bucket:        mc.Bucket,
		PresignExpiry: mc.PresignExpiry,
	}, c.Logger.Named("minio"))
	if err != nil {
		return nil, err
	}
	return cl, nil
}

//Personal.AI order the ending
