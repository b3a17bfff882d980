package extract

import (
	"fmt"
	"strings"
)

func userList(users []string) string {
	quoted := make([]string, len(users))
	for i, u := range users {
		quoted[i] = "'" + u + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

const outputRules = `Return a JSON list of objects with exactly these keys:
'Project' (%s),
'Task Name' (the action item),
'Assignee' (match the name to this list if possible: %s, otherwise output 'Unassigned').
Do not add any markdown formatting or explanations. Just the JSON array.`

func imagePrompt(users []string) string {
	return "You are a professional project manager. Read the attached image of meeting minutes.\n" +
		"Extract ONLY actionable items.\n" +
		fmt.Sprintf(outputRules, "infer a short project name from context", userList(users))
}

func chatPrompt(users []string, transcript string) string {
	return "You are a project manager. Read the following team chat transcript.\n" +
		"Identify any actionable tasks that team members agreed to do.\n" +
		fmt.Sprintf(outputRules, "infer a short project name from context, or use 'Team Chat'", userList(users)) +
		"\nIf no tasks are found, return an empty array: [].\n\nCHAT TRANSCRIPT:\n" + transcript
}

func planPrompt(users []string, goal string) string {
	return "You are a project manager. Break the following goal into a short, ordered list of concrete tasks " +
		"and spread them sensibly across the team.\n" +
		fmt.Sprintf(outputRules, "a short name for the goal", userList(users)) +
		"\n\nGOAL:\n" + goal
}
