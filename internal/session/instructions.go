package session

import (
	"fmt"
	"strings"

	"interview-room/internal/domain"
)

// InterviewPromptBuilder arma las instrucciones del agente entrevistador.
type InterviewPromptBuilder struct{}

var interviewFocusAreas = []string{
	"Technical Skills: Questions that evaluate the candidate's specific technical abilities mentioned in the resume.",
	"Experience: Questions that explore the candidate's past work experiences and achievements related to the job description.",
	"Cultural Fit: Questions that determine how well the candidate aligns with the company's values and work environment.",
	"Problem-Solving and Critical Thinking: Questions that assess the candidate's approach to challenges and their ability to think critically in relevant scenarios.",
	"Behavioral Questions: Questions based on the candidate's previous experiences to understand their behavior in various situations.",
}

// BuildInterviewContext compone el contexto inmutable a partir del material del candidato.
func (b InterviewPromptBuilder) BuildInterviewContext(resume, jobDescription string) domain.InterviewContext {
	return domain.InterviewContext{
		Resume:         resume,
		JobDescription: jobDescription,
		Instructions:   b.BuildInstructions(resume, jobDescription),
	}
}

func (InterviewPromptBuilder) BuildInstructions(resume, jobDescription string) string {
	var sb strings.Builder

	sb.WriteString("You are an AI assistant tasked with generating interview questions for a candidate based on their resume and a specific job description.\n")
	sb.WriteString(fmt.Sprintf("Resume: %s\n", strings.TrimSpace(resume)))
	sb.WriteString(fmt.Sprintf("Job Description: %s\n\n", strings.TrimSpace(jobDescription)))

	sb.WriteString("Please analyze the resume and job description to create a set of tailored interview questions that assess the candidate's qualifications, skills, and experiences relevant to the role. Focus on the following areas:\n\n")
	for _, area := range interviewFocusAreas {
		sb.WriteString(area)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString("Now you are the interviewer and I am the interviewee. Please start by giving a welcome and ask the interviewee to introduce themselves.\n")
	return sb.String()
}
