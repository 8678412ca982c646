package reporting

import "fmt"

func GetPulumiOutputAsCollapsibleComment(summary string, open bool) func(string) string {
	var openTag string
	if open {
		openTag = "open=\"true\""
	} else {
		openTag = ""
	}

	return func(comment string) string {
		return fmt.Sprintf(`<details %v><summary>`+summary+`</summary>

`+"```"+`
`+comment+`
`+"```"+`
</details>`, openTag)
	}
}

func GetPulumiOutputAsComment(summary string) func(string) string {
	return func(comment string) string {
		return summary + "\n```\n" + comment + "\n```"
	}
}

func AsComment(summary string) func(string) string {
	return func(comment string) string {
		return summary + "\n" + comment
	}
}
