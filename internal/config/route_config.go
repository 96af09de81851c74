package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"rhizo-cli/internal/consts"
	"rhizo-cli/internal/logic/domain"
	"rhizo-cli/internal/pkg/logger"
	"rhizo-cli/internal/types"
)

// RouteArgument 路由参数声明，类型名大小写不敏感
type RouteArgument struct {
	Name         string `toml:"name" validate:"required"`
	ArgumentType string `toml:"argument_type" validate:"required"`
}

// RouteConfig 开发者编写的路由配置（TOML）
//
//	route = "hello"
//	encodings = ["textplain"]
//	cacheable = false
//	[[arguments]]
//	name = "who"
//	argument_type = "str"
type RouteConfig struct {
	Route      string          `toml:"route" validate:"required,printascii,excludesall=/"`
	Encodings  []string        `toml:"encodings"`
	Arguments  []RouteArgument `toml:"arguments" validate:"dive"`
	Cacheable  bool            `toml:"cacheable"`
	CacheTTLMs *uint64         `toml:"cache_ttl_ms"`
}

var validate = validator.New()

// ParseRouteConfig 解析并做结构校验；编码与参数类型的语义在 ToRoute 中处理
func ParseRouteConfig(data string) (*RouteConfig, error) {
	var c RouteConfig
	md, err := toml.Decode(data, &c)
	if err != nil {
		return nil, fmt.Errorf("unable to parse route config as TOML: %w", err)
	}
	for _, key := range md.Undecoded() {
		logger.Warnf("[RouteConfig] 未识别的配置项: %s", key)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("route config: %w", err)
	}
	if seed := domain.RouteSeed(c.Route); len(seed) > consts.MaxSeedLength {
		return nil, fmt.Errorf("route config: route name %q is too long, at most %d bytes",
			c.Route, consts.MaxSeedLength-len(consts.RouteSeedPrefix))
	}
	return &c, nil
}

func LoadRouteConfig(path string) (*RouteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("unable to read route config: %w", err)}
	}
	c, err := ParseRouteConfig(string(data))
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return c, nil
}

// ParsedEncodings 未识别的编码名直接忽略
func (c *RouteConfig) ParsedEncodings() []domain.Encoding {
	out := make([]domain.Encoding, 0, len(c.Encodings))
	for _, name := range c.Encodings {
		e, ok := domain.ParseEncoding(name)
		if !ok {
			logger.Debugf("[RouteConfig] 忽略未识别的编码: %s", name)
			continue
		}
		out = append(out, e)
	}
	return domain.NormalizeEncodings(out)
}

// ParsedArguments 未识别的参数类型是硬错误
func (c *RouteConfig) ParsedArguments() ([]domain.Argument, error) {
	out := make([]domain.Argument, 0, len(c.Arguments))
	for _, a := range c.Arguments {
		t, err := domain.ParseArgumentType(a.ArgumentType)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", a.Name, err)
		}
		out = append(out, domain.Argument{Name: []byte(a.Name), Type: t})
	}
	return out, nil
}

// ToRoute 组装链上路由数据，bump 由指令构造时填写
func (c *RouteConfig) ToRoute(cid types.ContentHash) (domain.Route, error) {
	args, err := c.ParsedArguments()
	if err != nil {
		return domain.Route{}, err
	}
	return domain.Route{
		Name:      domain.RouteSeed(c.Route),
		ModuleCID: cid,
		Encodings: c.ParsedEncodings(),
		Arguments: args,
		CacheConfig: domain.CacheConfig{
			Cacheable: c.Cacheable,
			TTLMs:     c.CacheTTLMs,
		},
	}, nil
}
