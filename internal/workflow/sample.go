package workflow

// SampleResume is the resume the backend analyzes for sample submissions.
// It is shown on the sample tab so users know what they are scoring; it is
// never sent.
const SampleResume = `John Smith
Software Developer
Email: john.smith@email.com
Phone: (555) 123-4567

Experience:
- Worked at Tech Company for 2 years
- Built websites using JavaScript
- Fixed bugs and wrote code

Education:
- Computer Science Degree from University

Skills:
- Programming
- Problem solving
`
