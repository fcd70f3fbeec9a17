package buildinfo

const ProjectName = "quizparty"

const Graffiti = `
  __ _ _   _(_)_____ __  __ _ _ __| |_ _   _
 / _` + "`" + ` | | | | |_  / '_ \/ _` + "`" + ` | '__| __| | | |
| (_| | |_| | |/ /| |_) | (_| | |  | |_| |_| |
 \__, |\__,_|_/___| .__/ \__,_|_|   \__|\__, |
    |_|           |_|                   |___/
`

const GreetingCLI = "%s %s — live multiplayer quiz rooms\n"
