package skills

// baseVocabulary is scanned for across the whole resume. Entries are canonical.
var baseVocabulary = []string{
	"react", "javascript", "typescript", "node.js", "python", "aws", "docker", "kubernetes",
	"sql", "postgres", "mysql", "mongodb", "machine learning", "django", "flask", "java", "spring",
	"css", "html", "graphql", "rest", "microservices", "azure", "gcp", "figma", "ux", "seo",
	"express", "redux", "next.js", "vue", "angular", "react native", "tailwind",
	"go", "rust", "c++", "c#", ".net", "ruby", "rails", "php", "kotlin", "swift", "scala",
	"redis", "kafka", "rabbitmq", "elasticsearch", "terraform", "ansible", "jenkins", "ci/cd",
	"git", "linux", "prometheus", "grafana", "spark", "airflow", "hadoop", "tensorflow", "pytorch",
	"pandas", "numpy", "scikit-learn", "nlp", "deep learning", "data analysis", "tableau", "power bi",
	"selenium", "cypress", "jest", "agile", "scrum", "jira", "salesforce", "crm", "mern",
}

// aliases map alternate spellings to their canonical skill.
var aliases = map[string]string{
	"js":                    "javascript",
	"es6":                   "javascript",
	"ts":                    "typescript",
	"node":                  "node.js",
	"nodejs":                "node.js",
	"node js":               "node.js",
	"ml":                    "machine learning",
	"reactjs":               "react",
	"react.js":              "react",
	"react js":              "react",
	"react-native":          "react native",
	"vuejs":                 "vue",
	"vue.js":                "vue",
	"angularjs":             "angular",
	"nextjs":                "next.js",
	"expressjs":             "express",
	"express.js":            "express",
	"postgresql":            "postgres",
	"postgre":               "postgres",
	"mongo":                 "mongodb",
	"k8s":                   "kubernetes",
	"golang":                "go",
	"amazon web services":   "aws",
	"google cloud":          "gcp",
	"google cloud platform": "gcp",
	"ms azure":              "azure",
	"ci cd":                 "ci/cd",
	"cicd":                  "ci/cd",
	"restful":               "rest",
	"rest api":              "rest",
	"rest apis":             "rest",
	"apis":                  "api",
	"sklearn":               "scikit-learn",
	"tf":                    "tensorflow",
	"ui/ux":                 "ux",
	"ux design":             "ux",
	"dotnet":                ".net",
	"c sharp":               "c#",
	"cpp":                   "c++",
}

// synonyms are expanded one level deep after canonicalisation.
var synonyms = map[string][]string{
	"sql":          {"postgres", "mysql"},
	"postgres":     {"sql"},
	"mysql":        {"sql"},
	"mern":         {"mongodb", "express", "react", "node.js"},
	"tensorflow":   {"machine learning"},
	"pytorch":      {"machine learning"},
	"react native": {"react"},
}

// scanExcluded are surface terms too ambiguous in prose for the whole-document
// scan. Sections and bullets still admit them.
var scanExcluded = map[string]bool{
	"go":   true,
	"rest": true,
	"ts":   true,
	"tf":   true,
}

var stopwords = map[string]bool{
	"and": true, "with": true, "experience": true, "years": true, "year": true,
	"skills": true, "skill": true, "responsibilities": true, "the": true, "of": true,
	"in": true, "to": true, "for": true, "on": true, "at": true, "an": true, "or": true,
	"etc": true, "including": true, "various": true, "knowledge": true, "proficient": true,
	"familiar": true, "strong": true, "good": true, "excellent": true, "tools": true,
	"technologies": true, "languages": true, "frameworks": true, "other": true,
	"using": true, "work": true, "team": true, "basic": true, "advanced": true,
	"intermediate": true, "expert": true, "others": true, "libraries": true,
}

// sectionStops are headings that end a skills section.
var sectionStops = map[string]bool{
	"experience": true, "work experience": true, "professional experience": true,
	"employment": true, "employment history": true, "work history": true,
	"education": true, "projects": true, "personal projects": true,
	"certifications": true, "certificates": true, "summary": true,
	"professional summary": true, "profile": true, "objective": true,
	"interests": true, "hobbies": true, "awards": true, "achievements": true,
	"publications": true, "references": true, "contact": true, "volunteering": true,
}
