package detector

// defaultRules is the built-in catalog in declaration order
func defaultRules() []Rule {
	return []Rule{
		{
			Name:         "Next.js",
			Kind:         KindFramework,
			Files:        []string{"next.config.js", "next.config.mjs", "next.config.ts"},
			ManifestKeys: []string{"next"},
			Priority:     100,
			Icon:         "⚡",
		},
		{
			Name:         "React",
			Kind:         KindFramework,
			ManifestKeys: []string{"react", "react-dom"},
			Priority:     90,
			Icon:         "⚛️",
		},
		{
			Name:         "Vue.js",
			Kind:         KindFramework,
			Files:        []string{"vue.config.js"},
			ManifestKeys: []string{"vue"},
			Patterns:     []string{`\.vue$`},
			Priority:     90,
			Icon:         "💚",
		},
		{
			Name:         "Angular",
			Kind:         KindFramework,
			Files:        []string{"angular.json"},
			ManifestKeys: []string{"@angular/core"},
			Priority:     90,
			Icon:         "🅰️",
		},
		{
			Name:         "Svelte",
			Kind:         KindFramework,
			Files:        []string{"svelte.config.js"},
			ManifestKeys: []string{"svelte"},
			Patterns:     []string{`\.svelte$`},
			Priority:     90,
			Icon:         "🔥",
		},
		{
			Name:         "Nuxt.js",
			Kind:         KindFramework,
			Files:        []string{"nuxt.config.js", "nuxt.config.ts"},
			ManifestKeys: []string{"nuxt"},
			Priority:     95,
			Icon:         "💚",
		},
		{
			Name:         "Express.js",
			Kind:         KindFramework,
			ManifestKeys: []string{"express"},
			Priority:     80,
			Icon:         "🚂",
		},
		{
			Name:         "NestJS",
			Kind:         KindFramework,
			Files:        []string{"nest-cli.json"},
			ManifestKeys: []string{"@nestjs/core"},
			Priority:     85,
			Icon:         "🐱",
		},
		{
			Name:     "Django",
			Kind:     KindFramework,
			Files:    []string{"manage.py", "settings.py"},
			Priority: 90,
			Icon:     "🎸",
		},
		{
			Name:     "Flask",
			Kind:     KindFramework,
			Files:    []string{"app.py"},
			Priority: 85,
			Icon:     "🧪",
		},
		{
			Name:     "FastAPI",
			Kind:     KindFramework,
			Files:    []string{"main.py"},
			Priority: 85,
			Icon:     "⚡",
		},
		{
			Name:     "Spring Boot",
			Kind:     KindFramework,
			Files:    []string{"pom.xml", "build.gradle"},
			Priority: 90,
			Icon:     "🍃",
		},
		{
			Name:         "Webpack",
			Kind:         KindTool,
			Files:        []string{"webpack.config.js"},
			ManifestKeys: []string{"webpack"},
			Priority:     70,
			Icon:         "📦",
		},
		{
			Name:         "Vite",
			Kind:         KindTool,
			Files:        []string{"vite.config.js", "vite.config.ts"},
			ManifestKeys: []string{"vite"},
			Priority:     75,
			Icon:         "⚡",
		},
		{
			Name:         "Turbopack",
			Kind:         KindTool,
			ManifestKeys: []string{"turbo"},
			Priority:     70,
			Icon:         "🚀",
		},
		{
			Name:         "TypeScript",
			Kind:         KindLanguage,
			Files:        []string{"tsconfig.json"},
			ManifestKeys: []string{"typescript"},
			Patterns:     []string{`\.tsx?$`},
			Priority:     80,
			Icon:         "📘",
		},
		{
			Name:     "JavaScript",
			Kind:     KindLanguage,
			Files:    []string{"package.json"},
			Patterns: []string{`\.jsx?$`},
			Priority: 70,
			Icon:     "📜",
		},
		{
			Name:     "Python",
			Kind:     KindLanguage,
			Files:    []string{"requirements.txt", "Pipfile", "pyproject.toml"},
			Patterns: []string{`\.py$`},
			Priority: 80,
			Icon:     "🐍",
		},
		{
			Name:         "Redux",
			Kind:         KindLibrary,
			ManifestKeys: []string{"redux", "@reduxjs/toolkit"},
			Priority:     60,
			Icon:         "🔄",
		},
		{
			Name:         "Zustand",
			Kind:         KindLibrary,
			ManifestKeys: []string{"zustand"},
			Priority:     60,
			Icon:         "🐻",
		},
		{
			Name:         "Pinia",
			Kind:         KindLibrary,
			ManifestKeys: []string{"pinia"},
			Priority:     60,
			Icon:         "🍍",
		},
		{
			Name:         "Tailwind CSS",
			Kind:         KindLibrary,
			Files:        []string{"tailwind.config.js", "tailwind.config.ts"},
			ManifestKeys: []string{"tailwindcss"},
			Priority:     65,
			Icon:         "🎨",
		},
		{
			Name:         "Bootstrap",
			Kind:         KindLibrary,
			ManifestKeys: []string{"bootstrap"},
			Priority:     60,
			Icon:         "🅱️",
		},
		{
			Name:         "Prisma",
			Kind:         KindLibrary,
			Files:        []string{"prisma/schema.prisma"},
			ManifestKeys: []string{"prisma", "@prisma/client"},
			Priority:     70,
			Icon:         "🔷",
		},
		{
			Name:         "MongoDB",
			Kind:         KindLibrary,
			ManifestKeys: []string{"mongodb", "mongoose"},
			Priority:     65,
			Icon:         "🍃",
		},
	}
}
