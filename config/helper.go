package config

// Load 加载并绑定指定节的配置到结构体 T，section 为空时绑定整个配置
func Load[T any](cfg Configuration, section string) (T, error) {
	var t T
	err := cfg.Bind(section, &t)
	return t, err
}

// LoadInto 在已有默认值的结构体上覆盖配置，节不存在时保持默认值
func LoadInto[T any](cfg Configuration, section string, defaults T) (T, error) {
	if section != "" && len(cfg.GetSection(section).GetAll()) == 0 {
		return defaults, nil
	}
	t := defaults
	err := cfg.Bind(section, &t)
	return t, err
}
